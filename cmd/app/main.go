package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/ansuz/internal"
	pkgconfig "github.com/starford/ansuz/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

// configure loads the configuration and installs the default logger. The
// config file is optional: without --config and without a file in the
// search path, defaults apply.
func configure(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	path := cmd.String("config")
	if path == "" {
		path = internal.ResolveConfigPath()
	}
	if path != "" {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	return cfg, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Markdown automation: render diagrams, upload local images, publish to Ghost",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("ANSUZ_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			buildCommand(),
			publishCommand(),
			checkCommand(),
			genimageCommand(),
			configCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
