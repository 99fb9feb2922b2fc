// Package genimage generates images from text prompts through an
// OpenAI-compatible images endpoint.
package genimage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultSize is the generated image size when none is configured.
const DefaultSize = "1024x1024"

const (
	maxImageSize    = 10 << 20
	maxResponseSize = 16 << 20
)

// APIError is a non-200 response from the image service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genimage: unexpected status %d: %s", e.Status, e.Body)
}

// Client generates images against one endpoint and API key.
type Client struct {
	endpoint string
	apiKey   string
	size     string
	client   *http.Client
}

// NewClient returns an image-generation client. An empty size selects
// DefaultSize. Generation is slow, so the HTTP timeout is generous.
func NewClient(endpoint, apiKey, size string) *Client {
	if size == "" {
		size = DefaultSize
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		size:     size,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate renders prompt into PNG bytes. The service answers with either
// inline base64 image data or a URL to download; both are handled.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("genimage: empty prompt")
	}

	payload := struct {
		Prompt         string `json:"prompt"`
		Size           string `json:"size"`
		ResponseFormat string `json:"response_format"`
	}{Prompt: prompt, Size: c.size, ResponseFormat: "b64_json"}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("genimage: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("genimage: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genimage: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("genimage: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
			URL     string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("genimage: decode response: %w", err)
	}
	if len(decoded.Data) == 0 {
		return nil, errors.New("genimage: response carries no image")
	}

	first := decoded.Data[0]
	switch {
	case first.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("genimage: decode image data: %w", err)
		}
		return data, nil
	case first.URL != "":
		return c.download(ctx, first.URL)
	default:
		return nil, errors.New("genimage: response carries no image")
	}
}

// download fetches an image the service stored at a URL instead of
// inlining, with a hard size cap.
func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("genimage: invalid image URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("genimage: unsupported scheme: %s", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("genimage: build download request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genimage: download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: "image download failed"}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("genimage: read image: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("genimage: image too large: exceeds %d bytes", maxImageSize)
	}
	return data, nil
}

// DefaultFilename returns a fresh name for a generated image written to
// the working directory.
func DefaultFilename() string {
	return "ansuz-" + uuid.NewString() + ".png"
}
