package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/genimage"
	"github.com/starford/ansuz/internal/report"
)

func genimageCommand() *cli.Command {
	return &cli.Command{
		Name:      "genimage",
		Usage:     "Generate an image from a text prompt",
		ArgsUsage: "PROMPT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (defaults to a fresh name in the working directory)",
			},
			&cli.StringFlag{
				Name:  "size",
				Usage: "Image size, e.g. 1024x1024",
			},
		},
		Action: runGenimage,
	}
}

func runGenimage(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if prompt == "" {
		return fmt.Errorf("usage: ansuz genimage PROMPT")
	}

	cfg, err := configure(cmd)
	if err != nil {
		return err
	}
	if !cfg.Images.Configured() {
		return fmt.Errorf("images is not configured: set images.url and images.api_key in %s", internal.DefaultConfigName)
	}

	size := cmd.String("size")
	if size == "" {
		size = cfg.Images.Size
	}

	client := genimage.NewClient(cfg.Images.URL, cfg.Images.APIKey, size)
	data, err := client.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	out := cmd.String("output")
	if out == "" {
		out = genimage.DefaultFilename()
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	report.NewPrinter(os.Stdout).Success(fmt.Sprintf("wrote %s (%d bytes)", out, len(data)))
	return nil
}
