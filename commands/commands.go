package commands

import (
	"errors"
	"fmt"

	"github.com/VTGare/Agenda/bot"
	"github.com/VTGare/Agenda/store"
	"github.com/VTGare/Agenda/topics"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"go.uber.org/zap"
)

func RegisterCommands(b *bot.Bot) {
	b.AddCommand(ping)
	b.AddCommand(send)
	b.AddCommand(closeTopic)
	b.AddCommand(listOpen)
	b.AddCommand(channel)
	b.AddCommand(roles)
	b.AddCommand(settings)
}

// message builds a plain text response. The empty component list strips any
// confirmation buttons left on the deferred response.
func message(content string) *api.InteractionResponseData {
	return &api.InteractionResponseData{
		Content:    option.NewNullableString(content),
		Components: &discord.ContainerComponents{},
	}
}

func messagef(format string, args ...any) *api.InteractionResponseData {
	return message(fmt.Sprintf(format, args...))
}

func embedResponse(embed discord.Embed) *api.InteractionResponseData {
	return &api.InteractionResponseData{
		Embeds:     &[]discord.Embed{embed},
		Components: &discord.ContainerComponents{},
	}
}

func isAdmin(ev *discord.InteractionEvent) bool {
	return ev.Member != nil && ev.Member.Permissions.Has(discord.PermissionAdministrator)
}

func memberRoles(ev *discord.InteractionEvent) []discord.RoleID {
	if ev.Member == nil {
		return nil
	}

	return ev.Member.RoleIDs
}

// renderError converts a lifecycle or store error into the text shown to the
// invoking user. Unknown errors are logged with the command's context and
// rendered as a generic failure.
func renderError(log *zap.SugaredLogger, ev *discord.InteractionEvent, cmd string, err error) *api.InteractionResponseData {
	var verr *topics.ValidationError

	switch {
	case errors.As(err, &verr):
		return messagef("%s is too long! Limit is %d characters, input is %d.", verr.Field, verr.Limit, verr.Got)
	case errors.Is(err, topics.ErrNotConfigured):
		return message("Bot is not configured for this server. Please contact an admin!")
	case errors.Is(err, topics.ErrNotAllowed):
		return message("You are not allowed to submit topics on this server.")
	case errors.Is(err, topics.ErrNotAdmin):
		return message("You need administrator permissions to do this.")
	case errors.Is(err, topics.ErrCancelled), errors.Is(err, topics.ErrTimedOut):
		return message("Cancelled")
	case errors.Is(err, store.ErrTopicNotFound):
		return message("No open topic with that id.")
	default:
		log.With(
			"command", cmd,
			"guild_id", ev.GuildID,
			"channel_id", ev.ChannelID,
			"error", err,
		).Error("command failed")

		return messagef("An error occurred while processing the `%s` command.", cmd)
	}
}
