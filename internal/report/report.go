// Package report renders run progress and results for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/ansuz/internal/detector"
	"github.com/starford/ansuz/internal/pipeline"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const bannerWidth = 60

// Printer writes styled status lines to one destination.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Heading prints a bold section line.
func (p *Printer) Heading(text string) {
	fmt.Fprintln(p.w, headingStyle.Render(text))
}

// Warn prints a yellow advisory line.
func (p *Printer) Warn(text string) {
	fmt.Fprintln(p.w, warnStyle.Render(text))
}

// Success prints a green checkmarked line.
func (p *Printer) Success(text string) {
	fmt.Fprintln(p.w, successStyle.Render("✓ "+text))
}

// Item reports one processed document item. The signature matches
// pipeline.Progress so a Printer can observe a run directly.
func (p *Printer) Item(kind, name, target string, err error) {
	if err != nil {
		fmt.Fprintln(p.w, failureStyle.Render(fmt.Sprintf("✗ failed %s: %v", name, err)))
		return
	}
	verb := "uploaded"
	if kind == pipeline.KindDiagram {
		verb = "rendered"
	}
	fmt.Fprintf(p.w, "%s %s\n",
		successStyle.Render(fmt.Sprintf("✓ %s %s", verb, name)),
		dimStyle.Render("-> "+target))
}

// Summary prints the run totals, colored by whether anything failed.
func (p *Printer) Summary(s *pipeline.Summary) {
	line := fmt.Sprintf("%d diagrams rendered, %d images uploaded", s.DiagramsRendered, s.ImagesUploaded)
	if failed := s.DiagramsFailed + s.ImagesFailed; failed > 0 {
		fmt.Fprintln(p.w, warnStyle.Render(fmt.Sprintf("%s, %d failed", line, failed)))
		return
	}
	fmt.Fprintln(p.w, successStyle.Render(line))
}

// Score prints a detection verdict: the overall percentage colored by
// severity, chunk counts, and the flagged passages.
func (p *Printer) Score(label string, r *detector.ScoreResult) {
	if label == "" {
		label = "Results"
	}
	rule := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(p.w, headingStyle.Render(rule))
	fmt.Fprintln(p.w, headingStyle.Render(banner(label)))
	fmt.Fprintln(p.w, headingStyle.Render(rule))

	if r.TimedOut {
		fmt.Fprintln(p.w, failureStyle.Render("Detection timed out or returned empty data"))
		return
	}
	if r.Truncated {
		p.Warn("Input exceeded the service limit and was truncated")
	}

	fmt.Fprintf(p.w, "  Overall AI Score:    %s / %d%% Human\n",
		scoreStyle(r.AIScore).Render(fmt.Sprintf("%d%% AI", r.AIScore)), 100-r.AIScore)
	fmt.Fprintf(p.w, "  Model Version:       %s\n", r.ModelVersion)
	fmt.Fprintf(p.w, "  Chunks Analyzed:     %d\n", len(r.Chunks))

	var ai, human, paraphrased []detector.Chunk
	for _, c := range r.Chunks {
		switch c.Type {
		case "AI":
			ai = append(ai, c)
		case "HUMAN-PARAPHRASED":
			paraphrased = append(paraphrased, c)
		default:
			human = append(human, c)
		}
	}
	fmt.Fprintf(p.w, "  AI Chunks:           %d\n", len(ai))
	fmt.Fprintf(p.w, "  Human Chunks:        %d\n", len(human))
	fmt.Fprintf(p.w, "  Paraphrased Chunks:  %d\n", len(paraphrased))

	if len(ai) > 0 {
		fmt.Fprintln(p.w, failureStyle.Render("\nAI-Detected Sections:"))
		sort.SliceStable(ai, func(i, j int) bool { return ai[i].AIScore > ai[j].AIScore })
		for _, c := range ai {
			fmt.Fprintln(p.w, failureStyle.Render(formatChunk(c)))
		}
	}
	if len(paraphrased) > 0 {
		fmt.Fprintln(p.w, warnStyle.Render("\nParaphrased Sections:"))
		for _, c := range paraphrased {
			fmt.Fprintln(p.w, warnStyle.Render(formatChunk(c)))
		}
	}
	switch {
	case len(human) > 0 && len(human) <= 10:
		fmt.Fprintln(p.w, successStyle.Render("\nHuman Sections:"))
		for _, c := range human {
			fmt.Fprintln(p.w, successStyle.Render(formatChunk(c)))
		}
	case len(human) > 10:
		fmt.Fprintln(p.w, successStyle.Render(
			fmt.Sprintf("\n%d sections detected as human-written (omitted for brevity)", len(human))))
	}
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 50:
		return failureStyle.Bold(true)
	case score >= 20:
		return warnStyle.Bold(true)
	default:
		return successStyle.Bold(true)
	}
}

func formatChunk(c detector.Chunk) string {
	preview := strings.ReplaceAll(c.Text, "\n", " ")
	if runes := []rune(preview); len(runes) > 80 {
		preview = string(runes[:80])
	}
	switch c.Type {
	case "AI":
		conf := ""
		if c.Confidence != "" {
			conf = fmt.Sprintf(" (%s)", c.Confidence)
		}
		categories := ""
		if len(c.Categories) > 0 {
			categories = fmt.Sprintf(" [%s]", strings.Join(c.Categories, ", "))
		}
		return fmt.Sprintf("  AI %d%%%s%s: %q...", c.AIScore, conf, categories, preview)
	case "HUMAN-PARAPHRASED":
		return fmt.Sprintf("  PARAPHRASED: %q...", preview)
	default:
		return fmt.Sprintf("  HUMAN: %q...", preview)
	}
}

func banner(label string) string {
	text := " " + label + " "
	if len(text) >= bannerWidth {
		return text
	}
	left := (bannerWidth - len(text)) / 2
	right := bannerWidth - len(text) - left
	return strings.Repeat("=", left) + text + strings.Repeat("=", right)
}
