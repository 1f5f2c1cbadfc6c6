package topics

import (
	"context"

	"github.com/VTGare/Agenda/slices"
	"github.com/VTGare/Agenda/store"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"go.uber.org/zap"
)

// ReactionSource is the slice of the chat platform the tally reads from.
type ReactionSource interface {
	Message(channelID discord.ChannelID, messageID discord.MessageID) (*discord.Message, error)
	Me() (*discord.User, error)
}

// Tally keeps a topic's priority equal to the live approval count on its
// posted message.
type Tally struct {
	store store.Store
	disc  ReactionSource
	log   *zap.SugaredLogger
}

func NewTally(st store.Store, disc ReactionSource, log *zap.SugaredLogger) *Tally {
	return &Tally{
		store: st,
		disc:  disc,
		log:   log,
	}
}

func (t *Tally) HandleReactionAdd(ctx context.Context, e *gateway.MessageReactionAddEvent) {
	t.resync(ctx, e.GuildID, e.ChannelID, e.MessageID, e.UserID, e.Emoji)
}

func (t *Tally) HandleReactionRemove(ctx context.Context, e *gateway.MessageReactionRemoveEvent) {
	t.resync(ctx, e.GuildID, e.ChannelID, e.MessageID, e.UserID, e.Emoji)
}

// resync reads the live approval count back off the message instead of
// incrementing, so duplicated or reordered events converge on the same value.
func (t *Tally) resync(
	ctx context.Context,
	guildID discord.GuildID, channelID discord.ChannelID, messageID discord.MessageID,
	actor discord.UserID, emoji discord.Emoji,
) {
	if !guildID.IsValid() {
		return
	}

	// The seed reaction on a fresh topic is the bot's own.
	if me, err := t.disc.Me(); err == nil && me.ID == actor {
		return
	}

	if emoji.Name != ApprovalMarker {
		return
	}

	cfg, err := t.store.Guild(ctx, int64(guildID))
	if err != nil || cfg.OutputChannelID != int64(channelID) {
		return
	}

	msg, err := t.disc.Message(channelID, messageID)
	if err != nil {
		t.log.With("channel_id", channelID, "message_id", messageID, "error", err).
			Warn("failed to fetch a reacted message")
		return
	}

	count := 0
	if react, ok := slices.Find(msg.Reactions, func(r discord.Reaction) bool {
		return r.Emoji.Name == ApprovalMarker
	}); ok {
		count = react.Count
	}

	if err := t.store.UpdatePriority(ctx, int64(messageID), count); err != nil {
		t.log.With("message_id", messageID, "error", err).
			Warn("failed to update a topic's priority")
	}
}
