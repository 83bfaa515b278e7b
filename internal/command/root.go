// Package command contains the CLI command constructors.
package command

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/isdelr/fuego-api/internal/config"
	"github.com/isdelr/fuego-api/internal/logger"
)

type configKey struct{}

// RootCommand instantiates the root command, with all sub-commands bound.
// Running it without a sub-command serves the API.
func RootCommand() *cobra.Command {
	serve := serveCommand()
	cmd := &cobra.Command{
		Use:          "fuego [command]",
		Short:        "The Fuego to-do API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger.Init(cfg.LogLevel, cfg.Pretty())
			log.Debug().
				Str("env", cfg.Env).
				Str("driver", cfg.DatabaseDriver).
				Int("port", cfg.ServerPort).
				Msg("Configuration loaded")
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		RunE: serve.RunE,
	}

	cmd.AddCommand(
		serve,
		migrateCommand(),
	)

	return cmd
}

func configFrom(ctx context.Context) *config.Config {
	return ctx.Value(configKey{}).(*config.Config)
}
