package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/detector"
	"github.com/starford/ansuz/internal/pipeline"
)

func TestItem(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Item(pipeline.KindImage, "pic.png", "https://cdn.test/blog/pic.png", nil)
	p.Item(pipeline.KindDiagram, "flow-abcd1234.png", "flow-abcd1234.png", nil)
	p.Item(pipeline.KindImage, "broken.png", "", errors.New("connection refused"))

	out := buf.String()
	if !strings.Contains(out, "✓ uploaded pic.png") {
		t.Errorf("missing upload line:\n%s", out)
	}
	if !strings.Contains(out, "https://cdn.test/blog/pic.png") {
		t.Errorf("missing target url:\n%s", out)
	}
	if !strings.Contains(out, "✓ rendered flow-abcd1234.png") {
		t.Errorf("missing render line:\n%s", out)
	}
	if !strings.Contains(out, "✗ failed broken.png: connection refused") {
		t.Errorf("missing failure line:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Summary(&pipeline.Summary{DiagramsRendered: 2, ImagesUploaded: 3})
	if !strings.Contains(buf.String(), "2 diagrams rendered, 3 images uploaded") {
		t.Errorf("summary = %q", buf.String())
	}
	if strings.Contains(buf.String(), "failed") {
		t.Errorf("clean summary mentions failures: %q", buf.String())
	}

	buf.Reset()
	p.Summary(&pipeline.Summary{ImagesUploaded: 1, ImagesFailed: 1, DiagramsFailed: 1})
	if !strings.Contains(buf.String(), "2 failed") {
		t.Errorf("summary = %q", buf.String())
	}
}

func TestScore(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Score("intro.md", &detector.ScoreResult{
		AIScore:      87,
		ModelVersion: "v9",
		Chunks: []detector.Chunk{
			{Type: "AI", AIScore: 65, Confidence: "medium", Text: "First flagged passage."},
			{Type: "AI", AIScore: 91, Confidence: "high", Text: "Worst passage.", Categories: []string{"repetitive", "generic"}},
			{Type: "HUMAN-PARAPHRASED", Text: "Reworded bit."},
			{Type: "HUMAN", Text: "Original writing."},
		},
	})

	out := buf.String()
	for _, want := range []string{
		" intro.md ",
		"87% AI",
		"13% Human",
		"Model Version:       v9",
		"Chunks Analyzed:     4",
		"AI Chunks:           2",
		`AI 91% (high) [repetitive, generic]: "Worst passage."...`,
		`PARAPHRASED: "Reworded bit."...`,
		`HUMAN: "Original writing."...`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// highest-scoring AI chunk listed first
	if strings.Index(out, "AI 91%") > strings.Index(out, "AI 65%") {
		t.Errorf("AI chunks not sorted by score:\n%s", out)
	}
}

func TestScore_ManyHumanChunks(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &detector.ScoreResult{AIScore: 5, ModelVersion: "v9"}
	for i := 0; i < 11; i++ {
		result.Chunks = append(result.Chunks, detector.Chunk{Type: "HUMAN", Text: "human text"})
	}
	p.Score("", result)

	out := buf.String()
	if !strings.Contains(out, "11 sections detected as human-written") {
		t.Errorf("missing omission summary:\n%s", out)
	}
	if strings.Contains(out, `HUMAN: "human text"`) {
		t.Errorf("individual human chunks listed despite overflow:\n%s", out)
	}
}

func TestScore_TimedOut(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Score("", &detector.ScoreResult{TimedOut: true})
	if !strings.Contains(buf.String(), "timed out") {
		t.Errorf("output = %q", buf.String())
	}
	if strings.Contains(buf.String(), "Overall AI Score") {
		t.Errorf("timed-out result still printed a score:\n%s", buf.String())
	}
}

func TestScore_Truncated(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Score("", &detector.ScoreResult{AIScore: 10, ModelVersion: "v9", Truncated: true})
	if !strings.Contains(buf.String(), "truncated") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatChunk_LongPreview(t *testing.T) {
	line := formatChunk(detector.Chunk{Type: "HUMAN", Text: strings.Repeat("word ", 40)})
	if len(line) > 120 {
		t.Errorf("preview not truncated, len = %d", len(line))
	}
}
