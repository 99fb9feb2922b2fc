package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/detector"
	"github.com/starford/ansuz/internal/report"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check a document for AI-generated content",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "sections",
				Usage: "Check each \\section of a .tex file separately",
			},
			&cli.BoolFlag{
				Name:  "no-explain",
				Usage: "Skip per-chunk explanations",
			},
		},
		Action: runCheck,
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: ansuz check FILE")
	}

	cfg, err := configure(cmd)
	if err != nil {
		return err
	}
	if !cfg.Detector.Configured() {
		return fmt.Errorf("detector is not configured: set detector.token in %s", internal.DefaultConfigName)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(raw)

	client := detector.NewClient(cfg.Detector.URL, cfg.Detector.Token)
	printer := report.NewPrinter(os.Stdout)
	explain := !cmd.Bool("no-explain")

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tex":
		if cmd.Bool("sections") {
			return checkSections(ctx, client, printer, text, explain)
		}
		text = detector.StripLaTeX(text)
	case ".md":
		text = stripFrontMatter(text)
	}

	result, err := client.Score(ctx, text, detectLanguage(ctx, client, text), explain)
	if err != nil {
		return authHint(err)
	}
	printer.Score(filepath.Base(path), result)
	return nil
}

// checkSections scores every \section of a LaTeX document on its own, so
// a single pasted passage is easier to pin down.
func checkSections(ctx context.Context, client *detector.Client, printer *report.Printer, tex string, explain bool) error {
	sections := detector.ExtractSections(tex)
	if len(sections) == 0 {
		return fmt.Errorf("no sections found in document")
	}

	language := detectLanguage(ctx, client, sections[0].Text)
	for _, section := range sections {
		result, err := client.Score(ctx, section.Text, language, explain)
		if err != nil {
			var ae *detector.APIError
			if errors.As(err, &ae) && ae.AuthFailure() {
				return authHint(err)
			}
			printer.Warn(fmt.Sprintf("section %q failed: %v", section.Name, err))
			continue
		}
		printer.Score(section.Name, result)
	}
	return nil
}

// detectLanguage falls back to English when the service cannot tell.
func detectLanguage(ctx context.Context, client *detector.Client, text string) string {
	code, _, err := client.DetectLanguage(ctx, text)
	if err != nil {
		slog.Warn("language detection failed, defaulting to English",
			slog.String("error", err.Error()))
		return "en"
	}
	return code
}

// authHint wraps token rejections with the likely fix.
func authHint(err error) error {
	var ae *detector.APIError
	if errors.As(err, &ae) && ae.AuthFailure() {
		return fmt.Errorf("detector token rejected, refresh detector.token: %w", err)
	}
	return err
}

// stripFrontMatter drops a leading YAML block so metadata is not scored
// as prose.
func stripFrontMatter(text string) string {
	var meta struct{}
	rest, err := frontmatter.Parse(strings.NewReader(text), &meta)
	if err != nil {
		return text
	}
	return string(rest)
}
