package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/document"
	"github.com/starford/ansuz/internal/pipeline"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/report"
	"github.com/starford/ansuz/internal/uploader"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Render diagram blocks and upload local images, rewriting links in place",
		ArgsUsage: "FILE.md",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "folder",
				Usage: "Remote folder for uploaded assets (defaults to the file's directory name)",
			},
			&cli.BoolFlag{
				Name:  "skip-diagrams",
				Usage: "Leave diagram blocks untouched",
			},
			&cli.BoolFlag{
				Name:  "skip-images",
				Usage: "Leave local image links untouched",
			},
		},
		Action: runBuild,
	}
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: ansuz build FILE.md")
	}
	if !strings.EqualFold(filepath.Ext(path), ".md") {
		return fmt.Errorf("%s is not a markdown file", path)
	}

	cfg, err := configure(cmd)
	if err != nil {
		return err
	}

	doc, err := document.Load(path)
	if err != nil {
		return err
	}

	folder := cmd.String("folder")
	if folder == "" {
		folder = filepath.Base(doc.Dir())
	}

	var store uploader.Store
	closeStore := func() {}
	if !cmd.Bool("skip-images") {
		if store, closeStore, err = newStore(ctx, &cfg.Uploader); err != nil {
			return err
		}
	}
	defer closeStore()

	printer := report.NewPrinter(os.Stdout)
	printer.Heading(fmt.Sprintf("Processing %s (folder %q)", path, folder))

	p := pipeline.New(store, render.NewClient(cfg.Renderer.URL),
		pipeline.WithProgress(printer.Item),
		pipeline.WithSkipDiagrams(cmd.Bool("skip-diagrams")),
		pipeline.WithSkipImages(cmd.Bool("skip-images")),
	)
	summary, err := p.Run(ctx, doc, folder)
	if err != nil {
		return err
	}

	printer.Summary(summary)
	return nil
}

// newStore picks the configured asset store. The returned func releases
// the store's resources.
func newStore(ctx context.Context, cfg *internal.UploaderConfig) (uploader.Store, func(), error) {
	if !cfg.Configured() {
		return nil, nil, fmt.Errorf("uploader is not configured: set uploader.backend_url or uploader.use_gcs in %s", internal.DefaultConfigName)
	}
	if cfg.UseGCS {
		gcs, err := uploader.NewGCS(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	}
	return uploader.NewWebhook(cfg.BackendURL, cfg.Username, cfg.Password), func() {}, nil
}
