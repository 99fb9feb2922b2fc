package pipeline

import "log/slog"

// Option is a functional option for configuring a Pipeline.
type Option func(*Pipeline)

// WithFormat sets the rendered diagram image format (default "png").
func WithFormat(format string) Option {
	return func(p *Pipeline) {
		if format != "" {
			p.format = format
		}
	}
}

// WithLogger routes the pipeline's diagnostic logging.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithProgress registers a callback invoked once per processed item.
func WithProgress(fn Progress) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.progress = fn
		}
	}
}

// WithSkipDiagrams disables the diagram pass.
func WithSkipDiagrams(skip bool) Option {
	return func(p *Pipeline) {
		p.skipDiagrams = skip
	}
}

// WithSkipImages disables the image pass.
func WithSkipImages(skip bool) Option {
	return func(p *Pipeline) {
		p.skipImages = skip
	}
}
