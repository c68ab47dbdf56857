// Package commands implements the blockmesh command line interface.
package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hupe1980/blockmesh/config"
	"github.com/hupe1980/blockmesh/logging"
)

// app carries state resolved by the root Before hook into subcommands.
type app struct {
	cfg *config.Config
	log logging.Logger
}

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string, version string) error {
	a := &app{}
	cmd := &cli.Command{
		Name:    "blockmesh",
		Usage:   "Normalize provider chat output into ordered content blocks",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML configuration file",
				Sources: cli.EnvVars(config.EnvPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json|tint)",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.replayCommand(),
			a.chatCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.LogFormat = cmd.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return ctx, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return ctx, fmt.Errorf("failed to set up logging: %w", err)
	}
	a.cfg = cfg
	a.log = logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    cmd.Root().ErrWriter,
		Component: "blockmesh",
	})
	return ctx, nil
}
