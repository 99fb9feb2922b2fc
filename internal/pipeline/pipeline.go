// Package pipeline drives the render → upload → rewrite loop over a single
// Markdown document. Diagrams are rendered first and saved beside the
// document as local images, so the image pass that follows picks them up
// and uploads them along with everything else. The document is written back
// after every successful item, keeping the run safely interruptible and
// re-runnable.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/ansuz/internal/document"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/rewrite"
	"github.com/starford/ansuz/internal/scan"
	"github.com/starford/ansuz/internal/uploader"
)

// Item kinds reported in progress callbacks and failures.
const (
	KindDiagram = "diagram"
	KindImage   = "image"
)

// ItemError records one failed diagram or image. Item failures never abort
// the run; the remaining items still execute.
type ItemError struct {
	Kind string
	Name string // diagram display name or image reference string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Name, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// Summary reports what a run accomplished.
type Summary struct {
	DiagramsRendered int
	DiagramsFailed   int
	ImagesUploaded   int
	ImagesFailed     int
	Failures         []ItemError
}

// Failed reports whether any item failed.
func (s *Summary) Failed() bool {
	return s.DiagramsFailed > 0 || s.ImagesFailed > 0
}

// Progress receives one event per processed item: the item kind, its name,
// the resolved target (empty on failure), and the item's error, if any.
type Progress func(kind, name, target string, err error)

// Pipeline orchestrates diagram rendering and image uploading for one
// document. Items run strictly sequentially; cancellation takes effect
// between items.
type Pipeline struct {
	store        uploader.Store
	renderer     render.Renderer
	format       string
	logger       *slog.Logger
	progress     Progress
	skipDiagrams bool
	skipImages   bool
}

// New builds a Pipeline. A nil store or renderer is only acceptable when
// the corresponding pass is skipped.
func New(store uploader.Store, renderer render.Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    store,
		renderer: renderer,
		format:   "png",
		logger:   slog.Default(),
		progress: func(string, string, string, error) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the diagram pass, then re-scans and executes the image pass,
// uploading into folder. Collaborator failures are recorded per item and
// the run continues; a failed write of the document or of a rendered asset
// aborts the run, since a rewrite only counts once it is durable.
func (p *Pipeline) Run(ctx context.Context, doc *document.File, folder string) (*Summary, error) {
	sum := &Summary{}

	if !p.skipDiagrams {
		if p.renderer == nil {
			return sum, fmt.Errorf("pipeline: renderer required for diagram pass")
		}
		if err := p.diagramPass(ctx, doc, sum); err != nil {
			return sum, err
		}
	}
	if !p.skipImages {
		if p.store == nil {
			return sum, fmt.Errorf("pipeline: asset store required for image pass")
		}
		if err := p.imagePass(ctx, doc, folder, sum); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// diagramPass renders each fenced block, saves the image beside the
// document, and replaces the block with a local image link.
func (p *Pipeline) diagramPass(ctx context.Context, doc *document.File, sum *Summary) error {
	for _, block := range scan.FindDiagramBlocks(doc.Text()) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline: cancelled: %w", err)
		}

		img, err := p.renderer.Render(ctx, block.Source, p.format)
		if err != nil {
			sum.DiagramsFailed++
			sum.Failures = append(sum.Failures, ItemError{Kind: KindDiagram, Name: block.Name, Err: err})
			p.progress(KindDiagram, block.Name, "", err)
			p.logger.Warn("diagram render failed",
				slog.String("name", block.Name),
				slog.String("error", err.Error()))
			continue
		}

		filename := block.Filename()
		if _, err := doc.SaveAsset(filename, img); err != nil {
			return fmt.Errorf("pipeline: save rendered diagram %s: %w", block.Name, err)
		}
		if err := doc.Store(rewrite.ReplaceDiagramBlock(doc.Text(), block, filename)); err != nil {
			return fmt.Errorf("pipeline: persist after diagram %s: %w", block.Name, err)
		}

		sum.DiagramsRendered++
		p.progress(KindDiagram, block.Name, filename, nil)
		p.logger.Info("diagram rendered",
			slog.String("name", block.Name),
			slog.String("file", filename))
	}
	return nil
}

// imagePass uploads each local image reference found in the current text
// and rewrites its links to the returned public URL.
func (p *Pipeline) imagePass(ctx context.Context, doc *document.File, folder string, sum *Summary) error {
	for _, ref := range scan.FindImageReferences(doc.Text(), doc.Dir()) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline: cancelled: %w", err)
		}

		url, err := p.store.Upload(ctx, ref.Path, folder)
		if err != nil {
			sum.ImagesFailed++
			sum.Failures = append(sum.Failures, ItemError{Kind: KindImage, Name: ref.Original, Err: err})
			p.progress(KindImage, ref.Original, "", err)
			p.logger.Warn("image upload failed",
				slog.String("ref", ref.Original),
				slog.String("error", err.Error()))
			continue
		}

		updated := rewrite.ReplaceImageRefs(doc.Text(), map[string]string{ref.Original: url})
		if err := doc.Store(updated); err != nil {
			return fmt.Errorf("pipeline: persist after image %s: %w", ref.Original, err)
		}

		sum.ImagesUploaded++
		p.progress(KindImage, ref.Original, url, nil)
		p.logger.Info("image uploaded",
			slog.String("ref", ref.Original),
			slog.String("url", url))
	}
	return nil
}
