// Package render turns diagram source text into image bytes via a remote
// PlantUML-compatible rendering service.
package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is the public rendering service used when none is configured.
const DefaultURL = "https://kroki.io"

const maxImageSize = 10 << 20 // 10 MB

// Renderer converts diagram source into rendered image bytes.
type Renderer interface {
	Render(ctx context.Context, source, format string) ([]byte, error)
}

// Error reports a failed render, carrying the diagnostic the service
// returned for the offending diagram.
type Error struct {
	Status     int
	Diagnostic string
}

func (e *Error) Error() string {
	return fmt.Sprintf("render: service returned %d: %s", e.Status, e.Diagnostic)
}

// Client renders diagrams through an HTTP service exposing the
// /plantuml/{format} convention.
type Client struct {
	baseURL string
	client  *http.Client
}

var _ Renderer = (*Client)(nil)

// NewClient returns a renderer talking to the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Render posts source to the service and returns the rendered image bytes.
// Missing @startuml/@enduml directives are inserted before sending; block
// detection never required them.
func (c *Client) Render(ctx context.Context, source, format string) ([]byte, error) {
	url := fmt.Sprintf("%s/plantuml/%s", c.baseURL, format)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(ensureDirectives(source)))
	if err != nil {
		return nil, fmt.Errorf("render: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render: post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("render: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		diag := strings.TrimSpace(resp.Header.Get("X-Plantuml-Diagram-Error"))
		if diag == "" {
			diag = strings.TrimSpace(string(data))
		}
		return nil, &Error{Status: resp.StatusCode, Diagnostic: diag}
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("render: image exceeds %d bytes", maxImageSize)
	}
	return data, nil
}

// ensureDirectives wraps source with @startuml/@enduml when absent.
func ensureDirectives(source string) string {
	out := source
	if !strings.HasPrefix(out, "@startuml") {
		out = "@startuml\n" + out
	}
	if !strings.HasSuffix(strings.TrimRight(out, " \t\r\n"), "@enduml") {
		out += "\n@enduml"
	}
	return out
}
