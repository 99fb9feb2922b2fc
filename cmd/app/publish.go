package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/ghost"
	"github.com/starford/ansuz/internal/report"
)

func publishCommand() *cli.Command {
	return &cli.Command{
		Name:      "publish",
		Usage:     "Render a Markdown file to HTML and create a Ghost post",
		ArgsUsage: "FILE.md",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "slug",
				Usage: "Post slug (defaults to the file's directory name)",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Post status: draft or published",
				Value: "draft",
			},
			&cli.StringFlag{
				Name:  "feature-image",
				Usage: "Local image to upload as the post's feature image",
			},
		},
		Action: runPublish,
	}
}

func runPublish(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: ansuz publish FILE.md")
	}
	if !strings.EqualFold(filepath.Ext(path), ".md") {
		return fmt.Errorf("%s is not a markdown file", path)
	}

	cfg, err := configure(cmd)
	if err != nil {
		return err
	}
	if !cfg.Ghost.Configured() {
		return fmt.Errorf("ghost is not configured: set ghost.api_url and ghost.admin_api_key in %s", internal.DefaultConfigName)
	}

	client, err := ghost.NewClient(cfg.Ghost.APIURL, cfg.Ghost.AdminAPIKey)
	if err != nil {
		return err
	}

	post, err := client.PublishMarkdown(ctx, path, ghost.PublishOptions{
		Slug:         cmd.String("slug"),
		Status:       cmd.String("status"),
		FeatureImage: cmd.String("feature-image"),
	})
	if err != nil {
		return err
	}

	printer := report.NewPrinter(os.Stdout)
	location := post.URL
	if location == "" {
		location = "id " + post.ID
	}
	printer.Success(fmt.Sprintf("created %s post %q (%s)", post.Status, post.Title, location))
	return nil
}
