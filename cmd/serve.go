package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/socratutor/internal/ai/langchain"
	"github.com/socratutor/internal/api"
	"github.com/socratutor/internal/config"
	"github.com/socratutor/internal/llm"
	"github.com/socratutor/internal/logging"
	"github.com/socratutor/internal/session"
	"github.com/socratutor/internal/store"
	"github.com/socratutor/internal/tutor"
)

// ServeCommand returns the CLI command for starting the API server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the Socratutor API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadRuntimeConfig(c)
			if err != nil {
				return err
			}

			port := cfg.Server.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}

			manager, cleanup, err := buildManager(c.Context, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Printf("Starting Socratutor API server on port %d...\n", port)
			return api.NewServer(port, manager).Start()
		},
	}
}

// loadRuntimeConfig loads .env and the config file, then initializes logging.
func loadRuntimeConfig(c *cli.Context) (*config.Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Setup(cfg.Logging.Level, c.Bool("pretty"))
	return cfg, nil
}

// buildManager wires the model client, tutoring engine, and session store.
// The returned cleanup closes the store.
func buildManager(ctx context.Context, cfg *config.Config) (*session.Manager, func(), error) {
	model, err := langchain.NewModel(ctx, langchain.ConnectorOptions{
		Provider: langchain.Provider(cfg.AI.Provider),
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		ModelConfig: langchain.ModelConfig{
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	client := llm.NewClient(model)
	engine := tutor.NewEngine(
		langchain.NewSupervisor(client),
		langchain.NewGenerators(client),
		langchain.NewConversation(client),
		tutor.WithHistoryWindow(cfg.Tutor.HistoryWindow),
	)

	opts := []session.ManagerOption{
		session.WithDefaults(cfg.Tutor.DefaultTopic, tutor.Difficulty(cfg.Tutor.DefaultDifficulty)),
	}

	cleanup := func() {}
	if cfg.Store.Path != "" {
		repo, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session store: %w", err)
		}
		opts = append(opts, session.WithRepository(repo))
		cleanup = func() {
			if err := repo.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close session store")
			}
		}
	}
	if cfg.Logging.TranscriptDir != "" {
		opts = append(opts, session.WithTranscripts(cfg.Logging.TranscriptDir))
	}

	return session.NewManager(engine, opts...), cleanup, nil
}
