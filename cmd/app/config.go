package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/report"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration helpers",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example " + internal.DefaultConfigName + " to the working directory",
				Action: runConfigInit,
			},
		},
	}
}

func runConfigInit(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(internal.DefaultConfigName); err == nil {
		return fmt.Errorf("%s already exists", internal.DefaultConfigName)
	}
	if err := internal.WriteExample(internal.DefaultConfigName); err != nil {
		return err
	}
	report.NewPrinter(os.Stdout).Success("wrote " + internal.DefaultConfigName)
	return nil
}
