package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/VTGare/Agenda/arikawautils/middlewares"
	"github.com/VTGare/Agenda/bot"
	"github.com/VTGare/Agenda/commands"
	"github.com/VTGare/Agenda/ctxzap"
	"github.com/VTGare/Agenda/store/postgres"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var config = koanf.NewWithConf(koanf.Conf{
	Delim:       ".",
	StrictMerge: true,
})

func main() {
	if err := initializeConfig(); err != nil {
		log.Fatalf("failed to initialize config: %v", err)
	}

	logger, err := initializeLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	if config.String("bot.token") == "" || config.String("db.url") == "" {
		logger.Fatal("bot.token and db.url must be configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = ctxzap.ToContext(ctx, logger)

	st, err := postgres.New(ctx, config.String("db.url"))
	if err != nil {
		logger.With("error", err).Fatal("failed to open the database")
	}
	defer st.Close(ctx)

	if err := st.Init(ctx); err != nil {
		logger.With("error", err).Fatal("failed to prepare the database")
	}

	b := bot.New(logger, config, st)

	b.AddMiddleware(middlewares.CommandLog(logger))
	commands.RegisterCommands(b)

	if err := b.Start(ctx); err != nil {
		logger.With("error", err).Fatal("failed to start the bot")
	}
}

func initializeLogger() (*zap.SugaredLogger, error) {
	if config.Bool("dev.mode") {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}

		return log.Sugar(), nil
	}

	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

func initializeConfig() error {
	// Load JSON config
	jsonPath := "config.json"
	if fileExists(jsonPath) {
		if err := config.Load(file.Provider(jsonPath), json.Parser()); err != nil {
			return err
		}
	}

	// Load environment variables
	err := config.Load(env.Provider("AGENDA_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "AGENDA_")), "_", ".", -1)
	}), nil)
	if err != nil {
		return err
	}

	// Load .env file
	dotenvPath := ".env"
	if fileExists(dotenvPath) {
		dotenvParser := dotenv.ParserEnv("AGENDA_", ".", func(s string) string {
			return strings.Replace(strings.ToLower(
				strings.TrimPrefix(s, "AGENDA_")), "_", ".", -1)
		})

		if err := config.Load(file.Provider(".env"), dotenvParser); err != nil {
			return err
		}
	}

	return nil
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
