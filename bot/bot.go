package bot

import (
	"context"
	"fmt"

	"github.com/VTGare/Agenda/gate"
	"github.com/VTGare/Agenda/store"
	"github.com/VTGare/Agenda/topics"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type Bot struct {
	Config *koanf.Koanf
	State  *state.State
	Store  store.Store
	Log    *zap.SugaredLogger

	Gate   *gate.Gate
	Topics *topics.Manager
	Tally  *topics.Tally

	router   *cmdroute.Router
	commands []api.CreateCommandData
}

func New(log *zap.SugaredLogger, config *koanf.Koanf, st store.Store) *Bot {
	var (
		r = cmdroute.NewRouter()
		s = state.New("Bot " + config.String("bot.token"))
	)

	s.AddIntents(gateway.IntentGuilds |
		gateway.IntentGuildMessages |
		gateway.IntentGuildMessageReactions,
	)

	g := gate.New(s)

	return &Bot{
		Config: config,
		State:  s,
		Store:  st,
		Log:    log,

		Gate:   g,
		Topics: topics.NewManager(st, s, g, log),
		Tally:  topics.NewTally(st, s, log),

		router:   r,
		commands: make([]api.CreateCommandData, 0),
	}
}

func (b *Bot) AddCommand(f func(b *Bot) (command api.CreateCommandData, handler cmdroute.CommandHandlerFunc)) {
	cmd, handler := f(b)

	b.commands = append(b.commands, cmd)
	b.router.AddFunc(cmd.Name, handler)
}

func (b *Bot) AddMiddleware(mw cmdroute.Middleware) {
	b.router.Use(mw)
}

func (b *Bot) Start(ctx context.Context) error {
	// Handlers may block on the confirmation gate far past the 3 second
	// response window, so every command is deferred up front.
	b.router.Use(cmdroute.Deferrable(b.State.Client, cmdroute.DeferOpts{
		Flags: discord.EphemeralMessage,
	}))

	b.State.AddInteractionHandler(b.router)

	if err := cmdroute.OverwriteCommands(b.State, b.commands); err != nil {
		return fmt.Errorf("failed to overwrite commands: %w", err)
	}

	b.Gate.Attach(b.State)

	b.State.AddHandler(func(e *gateway.MessageReactionAddEvent) {
		b.Tally.HandleReactionAdd(ctx, e)
	})
	b.State.AddHandler(func(e *gateway.MessageReactionRemoveEvent) {
		b.Tally.HandleReactionRemove(ctx, e)
	})

	if activity := b.Config.String("bot.activity"); activity != "" {
		b.State.AddHandler(func(*gateway.ReadyEvent) {
			err := b.State.Gateway().Send(ctx, &gateway.UpdatePresenceCommand{
				Status: discord.OnlineStatus,
				Activities: []discord.Activity{{
					Name: activity,
					Type: discord.ListeningActivity,
				}},
			})
			if err != nil {
				b.Log.With("error", err).Warn("failed to update presence")
			}
		})
	}

	if err := b.State.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	return nil
}
