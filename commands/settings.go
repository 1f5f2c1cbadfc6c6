package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/VTGare/Agenda/arikawautils/embeds"
	"github.com/VTGare/Agenda/bot"
	"github.com/VTGare/Agenda/slices"
	"github.com/VTGare/Agenda/store"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
)

func channel(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:                     "channel",
		Description:              "Configure the output channel for this server",
		Type:                     discord.ChatInputCommand,
		NoDMPermission:           true,
		DefaultMemberPermissions: discord.NewPermissions(discord.PermissionManageGuild),
		Options: discord.CommandOptions{
			&discord.SubcommandOption{
				OptionName:  "set",
				Description: "Set the channel topics are posted to",
				Options: []discord.CommandOptionValue{
					discord.NewChannelOption("channel", "The output channel", true),
				},
			},
			&discord.SubcommandOption{
				OptionName:  "unset",
				Description: "Remove the output channel",
			},
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		var (
			ev      = data.Event
			guildID = int64(ev.GuildID)
		)

		if len(data.Options) == 0 {
			return message("Please pick a subcommand.")
		}

		if err := b.Store.EnsureGuild(ctx, guildID); err != nil {
			return renderError(b.Log, ev, "channel", err)
		}

		sub := data.Options[0]
		switch sub.Name {
		case "set":
			snowflake, err := sub.Options.Find("channel").SnowflakeValue()
			if err != nil {
				return message("Please provide a channel.")
			}

			if err := b.Store.SetOutputChannel(ctx, guildID, int64(snowflake)); err != nil {
				return renderError(b.Log, ev, "channel", err)
			}

			return messagef("Output channel set to: <#%d>", snowflake)
		case "unset":
			cfg, err := b.Store.Guild(ctx, guildID)
			if err != nil || !cfg.HasOutputChannel() {
				return message("No channel set")
			}

			if err := b.Store.ClearOutputChannel(ctx, guildID); err != nil {
				return renderError(b.Log, ev, "channel", err)
			}

			return message("Channel unset")
		}

		return message("Unknown subcommand.")
	}
}

func roles(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:                     "roles",
		Description:              "Configure roles approved to submit topics",
		Type:                     discord.ChatInputCommand,
		NoDMPermission:           true,
		DefaultMemberPermissions: discord.NewPermissions(discord.PermissionManageGuild),
		Options: discord.CommandOptions{
			&discord.SubcommandOption{
				OptionName:  "set",
				Description: "Add a role to the approved list",
				Options: []discord.CommandOptionValue{
					discord.NewRoleOption("role", "The role to approve", true),
				},
			},
			&discord.SubcommandOption{
				OptionName:  "unset",
				Description: "Remove a role from the approved list",
				Options: []discord.CommandOptionValue{
					discord.NewRoleOption("role", "The role to remove", true),
				},
			},
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		var (
			ev      = data.Event
			guildID = int64(ev.GuildID)
		)

		if len(data.Options) == 0 {
			return message("Please pick a subcommand.")
		}

		if err := b.Store.EnsureGuild(ctx, guildID); err != nil {
			return renderError(b.Log, ev, "roles", err)
		}

		sub := data.Options[0]

		snowflake, err := sub.Options.Find("role").SnowflakeValue()
		if err != nil {
			return message("Please provide a role.")
		}
		roleID := int64(snowflake)

		cfg, err := b.Store.Guild(ctx, guildID)
		if err != nil {
			return renderError(b.Log, ev, "roles", err)
		}

		switch sub.Name {
		case "set":
			if slices.Contains(cfg.AllowedRoleIDs, roleID) {
				return messagef("<@&%d> is already registered as an approved role!", roleID)
			}

			if err := b.Store.AddAllowedRole(ctx, guildID, roleID); err != nil {
				return renderError(b.Log, ev, "roles", err)
			}

			return messagef("<@&%d> can now submit topics!", roleID)
		case "unset":
			if !slices.Contains(cfg.AllowedRoleIDs, roleID) {
				return messagef("<@&%d> is not registered.", roleID)
			}

			if err := b.Store.RemoveAllowedRole(ctx, guildID, roleID); err != nil {
				return renderError(b.Log, ev, "roles", err)
			}

			return messagef("<@&%d> can no longer submit topics.", roleID)
		}

		return message("Unknown subcommand.")
	}
}

func settings(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:           "settings",
		Description:    "Show the current configuration for this server",
		Type:           discord.ChatInputCommand,
		NoDMPermission: true,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		ev := data.Event

		var (
			channelValue = "No channel saved!"
			rolesValue   = "None saved!"
		)

		cfg, err := b.Store.Guild(ctx, int64(ev.GuildID))
		switch {
		case err == nil:
			if cfg.HasOutputChannel() {
				channelValue = fmt.Sprintf("<#%d>", cfg.OutputChannelID)
			}

			if len(cfg.AllowedRoleIDs) > 0 {
				var sb strings.Builder
				for _, roleID := range cfg.AllowedRoleIDs {
					fmt.Fprintf(&sb, "- <@&%d> (%d)\n", roleID, roleID)
				}
				rolesValue = sb.String()
			}
		case errors.Is(err, store.ErrGuildNotFound):
			// Nothing configured yet; show the defaults.
		default:
			return renderError(b.Log, ev, "settings", err)
		}

		eb := embeds.NewBuilder().
			Title("Server settings").
			Description("Current options set").
			Color(int(embeds.ColorDarkBlue)).
			AddField("Output Channel", channelValue).
			AddField("Approved roles", rolesValue)

		return embedResponse(eb.Build())
	}
}
