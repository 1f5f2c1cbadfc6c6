package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/VTGare/Agenda/arikawautils/embeds"
	"github.com/VTGare/Agenda/bot"
	"github.com/VTGare/Agenda/topics"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
)

func send(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:           "send",
		Description:    "Submit a topic; it is posted anonymously after you confirm",
		Type:           discord.ChatInputCommand,
		NoDMPermission: true,
		Options: discord.CommandOptions{
			discord.NewStringOption("title", "Short title of the topic", true),
			discord.NewStringOption("message", "The topic itself", true),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		ev := data.Event

		topic, err := b.Topics.Submit(ctx, topics.SubmitRequest{
			GuildID:     ev.GuildID,
			Requester:   ev.SenderID(),
			MemberRoles: memberRoles(ev),
			Title:       data.Options.Find("title").String(),
			Body:        data.Options.Find("message").String(),
			AppID:       ev.AppID,
			Token:       ev.Token,
		})
		if err != nil {
			return renderError(b.Log, ev, "send", err)
		}

		return messagef("Topic #%d submitted.", topic.ID)
	}
}

func closeTopic(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:                     "close",
		Description:              "Close an open topic with an accept or deny outcome",
		Type:                     discord.ChatInputCommand,
		NoDMPermission:           true,
		DefaultMemberPermissions: discord.NewPermissions(discord.PermissionAdministrator),
		Options: discord.CommandOptions{
			&discord.IntegerOption{
				OptionName:  "topic",
				Description: "The topic number",
				Required:    true,
			},
			&discord.StringOption{
				OptionName:  "outcome",
				Description: "Decision made by administrators",
				Required:    true,
				Choices: []discord.StringChoice{
					{Name: "Accepted", Value: "accept"},
					{Name: "Denied", Value: "deny"},
				},
			},
			discord.NewStringOption("reason", "The reason behind the outcome", true),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		ev := data.Event

		id, err := data.Options.Find("topic").IntValue()
		if err != nil {
			return message("Please provide a numeric topic id.")
		}

		resolution, ok := topics.ParseResolution(data.Options.Find("outcome").String())
		if !ok {
			return message("Please specify if you are accepting or denying this topic.")
		}

		topic, err := b.Topics.Close(ctx, topics.CloseRequest{
			GuildID:    ev.GuildID,
			TopicID:    id,
			Resolution: resolution,
			Reason:     data.Options.Find("reason").String(),
			IsAdmin:    isAdmin(ev),
		})
		if errors.Is(err, topics.ErrArtifactMissing) {
			return messagef("Closed topic id %d, but its posted message was already deleted.", topic.ID)
		}
		if err != nil {
			return renderError(b.Log, ev, "close", err)
		}

		return messagef("Closed topic id %d", topic.ID)
	}
}

func listOpen(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:           "listopen",
		Description:    "List topics that are currently on the table",
		Type:           discord.ChatInputCommand,
		NoDMPermission: true,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		ev := data.Event

		open, err := b.Topics.ListOpen(ctx, ev.GuildID)
		if err != nil {
			return renderError(b.Log, ev, "listopen", err)
		}

		eb := embeds.NewBuilder().
			Title("Ongoing issues and suggestions").
			Color(int(embeds.ColorOrange))

		if len(open) == 0 {
			eb.Description("No open topics!")
		}

		for _, topic := range open {
			title := []rune(topic.Title)
			if len(title) > 20 {
				title = append(title[:20], []rune("...")...)
			}

			name := fmt.Sprintf("ID: %d Priority Level: %d", topic.ID, topic.PriorityLevel)
			value := fmt.Sprintf("Title: %s\nLink to post: %s", string(title), topic.MessageLink)
			if topic.PriorityLevel >= 10 {
				name = "**" + name + "**"
				value = fmt.Sprintf("**Title: %s**\nLink to post: %s", string(title), topic.MessageLink)
			}

			eb.AddField(name, value)
		}

		return embedResponse(eb.Build())
	}
}
