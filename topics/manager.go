// Package topics owns the lifecycle of a suggestion: submission behind the
// confirmation gate, the anonymous post in the guild's output channel, the
// community approval tally, and the administrative close.
package topics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/VTGare/Agenda/arikawautils/embeds"
	"github.com/VTGare/Agenda/gate"
	"github.com/VTGare/Agenda/slices"
	"github.com/VTGare/Agenda/store"
	"github.com/diamondburned/arikawa/v3/discord"
	"go.uber.org/zap"
)

// ApprovalMarker is the reaction whose live count becomes a topic's priority.
const ApprovalMarker = "👍"

// Discord's own limits are 256/4096; a little headroom is reserved.
const (
	TitleLimit = 200
	BodyLimit  = 4000
)

// Discord is the slice of the chat platform the lifecycle needs.
type Discord interface {
	Channel(channelID discord.ChannelID) (*discord.Channel, error)
	SendEmbeds(channelID discord.ChannelID, embeds ...discord.Embed) (*discord.Message, error)
	React(channelID discord.ChannelID, messageID discord.MessageID, emoji discord.APIEmoji) error
	Message(channelID discord.ChannelID, messageID discord.MessageID) (*discord.Message, error)
	EditEmbeds(channelID discord.ChannelID, messageID discord.MessageID, embeds ...discord.Embed) (*discord.Message, error)
}

// ConfirmationGate asks the submitter to approve the post before it happens.
type ConfirmationGate interface {
	Request(ctx context.Context, req gate.Request) (gate.Outcome, error)
}

type Manager struct {
	store store.Store
	disc  Discord
	gate  ConfirmationGate
	log   *zap.SugaredLogger
}

func NewManager(st store.Store, disc Discord, g ConfirmationGate, log *zap.SugaredLogger) *Manager {
	return &Manager{
		store: st,
		disc:  disc,
		gate:  g,
		log:   log,
	}
}

type SubmitRequest struct {
	GuildID     discord.GuildID
	Requester   discord.UserID
	MemberRoles []discord.RoleID
	Title       string
	Body        string

	// AppID and Token identify the interaction the gate renders on.
	AppID discord.AppID
	Token string
}

// Submit runs the whole submission flow: validate, check the guild's
// configuration and the requester's roles, confirm with the requester, then
// post anonymously, seed the approval reaction and persist the topic.
func (m *Manager) Submit(ctx context.Context, req SubmitRequest) (*store.Topic, error) {
	if n := len([]rune(req.Title)); n > TitleLimit {
		return nil, &ValidationError{Field: "Title", Limit: TitleLimit, Got: n}
	}

	if n := len([]rune(req.Body)); n > BodyLimit {
		return nil, &ValidationError{Field: "Message", Limit: BodyLimit, Got: n}
	}

	cfg, err := m.guildConfig(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	if !roleAllowed(cfg, req.MemberRoles) {
		return nil, ErrNotAllowed
	}

	preview := topicEmbed(0, req.Title, req.Body)

	outcome, err := m.gate.Request(ctx, gate.Request{
		AppID:   req.AppID,
		Token:   req.Token,
		UserID:  req.Requester,
		Prompt:  "Are you sure you want to send this topic? Below is a preview.",
		Preview: preview,
	})
	if err != nil {
		return nil, fmt.Errorf("confirmation failed: %w", err)
	}

	switch outcome {
	case gate.Cancelled:
		return nil, ErrCancelled
	case gate.TimedOut:
		return nil, ErrTimedOut
	}

	channelID := discord.ChannelID(cfg.OutputChannelID)

	posted, err := m.disc.SendEmbeds(channelID, preview)
	if err != nil {
		return nil, fmt.Errorf("failed to post the topic: %w", err)
	}

	if err := m.disc.React(channelID, posted.ID, ApprovalMarker); err != nil {
		m.log.With("message_id", posted.ID, "error", err).
			Warn("failed to seed the approval reaction")
	}

	topic, err := m.store.CreateTopic(ctx, &store.Topic{
		GuildID:     int64(req.GuildID),
		Title:       req.Title,
		Body:        req.Body,
		MessageID:   int64(posted.ID),
		MessageLink: messageLink(req.GuildID, channelID, posted.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist the topic: %w", err)
	}

	// The display id exists only after the insert, so the post is relabelled
	// afterwards. A failed relabel leaves the topic usable, just untagged.
	if _, err := m.disc.EditEmbeds(channelID, posted.ID, topicEmbed(topic.ID, req.Title, req.Body)); err != nil {
		m.log.With("topic_id", topic.ID, "message_id", posted.ID, "error", err).
			Warn("failed to relabel the posted topic")
	}

	return topic, nil
}

type Resolution int

const (
	Accepted Resolution = iota
	Denied
)

func ParseResolution(s string) (Resolution, bool) {
	switch strings.ToLower(s) {
	case "accept":
		return Accepted, true
	case "deny":
		return Denied, true
	default:
		return 0, false
	}
}

type CloseRequest struct {
	GuildID    discord.GuildID
	TopicID    int64
	Resolution Resolution
	Reason     string
	IsAdmin    bool
}

// Close resolves an open topic: the posted message is edited to show the
// outcome and the row is deleted. When the posted message is already gone the
// row is deleted anyway and ErrArtifactMissing is returned together with the
// topic, so the guild never keeps an uncloseable entry.
func (m *Manager) Close(ctx context.Context, req CloseRequest) (*store.Topic, error) {
	if !req.IsAdmin {
		return nil, ErrNotAdmin
	}

	cfg, err := m.guildConfig(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	topic, err := m.store.Topic(ctx, req.TopicID)
	if err != nil {
		return nil, err
	}

	if topic.GuildID != int64(req.GuildID) {
		return nil, store.ErrTopicNotFound
	}

	var (
		channelID = discord.ChannelID(cfg.OutputChannelID)
		messageID = discord.MessageID(topic.MessageID)
	)

	posted, err := m.disc.Message(channelID, messageID)
	if err != nil {
		if derr := m.store.DeleteTopic(ctx, topic.ID); derr != nil {
			m.log.With("topic_id", topic.ID, "error", derr).
				Error("failed to delete a topic with a missing message")
		}

		return topic, ErrArtifactMissing
	}

	resolved := resolvedEmbed(posted, topic, req.Resolution, req.Reason)
	if _, err := m.disc.EditEmbeds(channelID, messageID, resolved); err != nil {
		return nil, fmt.Errorf("failed to edit the posted topic: %w", err)
	}

	if err := m.store.DeleteTopic(ctx, topic.ID); err != nil {
		return nil, fmt.Errorf("failed to delete the topic: %w", err)
	}

	return topic, nil
}

func (m *Manager) ListOpen(ctx context.Context, guildID discord.GuildID) ([]*store.Topic, error) {
	return m.store.OpenTopics(ctx, int64(guildID))
}

func (m *Manager) guildConfig(ctx context.Context, guildID discord.GuildID) (*store.Guild, error) {
	cfg, err := m.store.Guild(ctx, int64(guildID))
	if err != nil {
		if errors.Is(err, store.ErrGuildNotFound) {
			return nil, ErrNotConfigured
		}

		return nil, fmt.Errorf("failed to load guild settings: %w", err)
	}

	if !cfg.HasOutputChannel() {
		return nil, ErrNotConfigured
	}

	// The channel may have been deleted since it was configured.
	if _, err := m.disc.Channel(discord.ChannelID(cfg.OutputChannelID)); err != nil {
		return nil, ErrNotConfigured
	}

	return cfg, nil
}

func roleAllowed(cfg *store.Guild, roles []discord.RoleID) bool {
	if len(cfg.AllowedRoleIDs) == 0 {
		return true
	}

	_, ok := slices.Find(roles, func(r discord.RoleID) bool {
		return cfg.RoleAllowed(int64(r))
	})

	return ok
}

func topicEmbed(id int64, title, body string) discord.Embed {
	label := "Topic: " + title
	if id != 0 {
		label = fmt.Sprintf("Topic #%d: %s", id, title)
	}

	return embeds.NewBuilder().
		Title(label).
		Description(body).
		Color(int(embeds.ColorGold)).
		Build()
}

func resolvedEmbed(posted *discord.Message, topic *store.Topic, resolution Resolution, reason string) discord.Embed {
	var embed discord.Embed
	if len(posted.Embeds) > 0 {
		embed = posted.Embeds[0]
	} else {
		embed = topicEmbed(topic.ID, topic.Title, topic.Body)
	}

	embed.Description = "~~" + embed.Description + "~~"
	embed.Fields = append(embed.Fields, discord.EmbedField{
		Name:  "Resolved",
		Value: fmt.Sprintf("This topic has been resolved by administrators for the following reason:\n```%s```", reason),
	})

	if resolution == Accepted {
		embed.Color = embeds.ColorGreen
	} else {
		embed.Color = embeds.ColorRed
	}

	return embed
}

func messageLink(guildID discord.GuildID, channelID discord.ChannelID, messageID discord.MessageID) string {
	return fmt.Sprintf("https://discord.com/channels/%d/%d/%d", guildID, channelID, messageID)
}
