// Package detector checks text for AI-generated content through the
// QuillBot detector API.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is the detector service used when none is configured.
const DefaultURL = "https://quillbot.com"

const (
	scorePath    = "/api/ai-detector/score"
	languagePath = "/api/utils/detect-language"

	// The service rejects texts under minTextLen characters and times out
	// on texts over maxTextLen, so long inputs are truncated client-side.
	minTextLen = 3
	maxTextLen = 30000

	webappVersion   = "40.82.0"
	languageTimeout = 30 * time.Second
	maxResponseSize = 4 << 20
	maxErrorBody    = 500
)

// APIError is a non-200 response from the detector service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("detector: unexpected status %d: %s", e.Status, e.Body)
}

// AuthFailure reports whether the error means the user token is missing,
// expired, or invalid.
func (e *APIError) AuthFailure() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Chunk is one classified span of the scored text.
type Chunk struct {
	Type       string // "AI", "HUMAN", "HUMAN-PARAPHRASED"
	AIScore    int    // 0-100
	Confidence string
	Text       string
	Categories []string
}

// ScoreResult is the detector's verdict on one text.
type ScoreResult struct {
	AIScore      int // 0-100
	ModelVersion string
	TimedOut     bool
	Truncated    bool // input exceeded the service limit and was cut
	Chunks       []Chunk
}

// Client talks to the detector API on behalf of one user token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient returns a detector client. An empty baseURL selects DefaultURL.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// DetectLanguage samples the first 500 characters of text and asks the
// service which language it is. Returns the language code and display name.
func (c *Client) DetectLanguage(ctx context.Context, text string) (code, name string, err error) {
	ctx, cancel := context.WithTimeout(ctx, languageTimeout)
	defer cancel()

	payload := struct {
		Text string `json:"text"`
	}{Text: truncateRunes(text, 500)}

	body, err := c.post(ctx, languagePath, payload)
	if err != nil {
		return "", "", err
	}

	var decoded struct {
		Language     string `json:"language"`
		LanguageName string `json:"languageName"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", "", fmt.Errorf("detector: decode language response: %w", err)
	}
	if decoded.Language == "" {
		return "en", "English", nil
	}
	if decoded.LanguageName == "" {
		decoded.LanguageName = decoded.Language
	}
	return decoded.Language, decoded.LanguageName, nil
}

// Score submits text for AI-content detection. Texts shorter than the
// service minimum are rejected locally; longer ones are truncated and the
// result flags it.
func (c *Client) Score(ctx context.Context, text, language string, explain bool) (*ScoreResult, error) {
	runes := []rune(text)
	if len(runes) < minTextLen {
		return nil, fmt.Errorf("detector: text too short (min %d characters)", minTextLen)
	}
	truncated := false
	if len(runes) > maxTextLen {
		text = string(runes[:maxTextLen])
		truncated = true
	}
	if language == "" {
		language = "en"
	}

	payload := struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Explain  bool   `json:"explain"`
	}{Text: text, Language: language, Explain: explain}

	body, err := c.post(ctx, scorePath, payload)
	if err != nil {
		return nil, err
	}

	result, err := decodeScore(body)
	if err != nil {
		return nil, err
	}
	result.Truncated = truncated
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("detector: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("detector: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Namespace", "ai-detector")
	req.Header.Set("Platform-Type", "webapp")
	req.Header.Set("QB-Product", "AI_CONTENT_DETECTOR")
	req.Header.Set("Webapp-Version", webappVersion)
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", c.baseURL+"/ai-content-detector")
	req.Header.Set("Useridtoken", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector: request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("detector: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: clipBody(body)}
	}
	return body, nil
}

// decodeScore unwraps the service's envelope variants. The payload arrives
// as {"data":{"value":{...}}}, {"data":{...}}, or bare, depending on the
// endpoint version.
func decodeScore(body []byte) (*ScoreResult, error) {
	payload := body
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("detector: decode score response: %w", err)
	}
	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		payload = envelope.Data
		var inner struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(envelope.Data, &inner); err == nil &&
			len(inner.Value) > 0 && string(inner.Value) != "null" {
			payload = inner.Value
		}
	}

	var data struct {
		AIScore      *float64 `json:"aiScore"`
		TotalAIScore *float64 `json:"totalAiScore"`
		ModelVersion string   `json:"modelVersion"`
		ModelID      string   `json:"modelID"`
		TimedOut     bool     `json:"timedOut"`
		Chunks       []struct {
			Type       string  `json:"type"`
			AIScore    float64 `json:"aiScore"`
			Confidence string  `json:"confidence"`
			Text       string  `json:"text"`
			Explainer  struct {
				Categories []string `json:"categories"`
			} `json:"explainer"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("detector: decode score payload: %w", err)
	}

	result := &ScoreResult{
		ModelVersion: data.ModelVersion,
		TimedOut:     data.TimedOut,
	}
	switch {
	case data.AIScore != nil:
		result.AIScore = normalizeScore(*data.AIScore)
	case data.TotalAIScore != nil:
		result.AIScore = normalizeScore(*data.TotalAIScore)
	}
	if result.ModelVersion == "" {
		result.ModelVersion = data.ModelID
	}
	if result.ModelVersion == "" {
		result.ModelVersion = "unknown"
	}
	for _, c := range data.Chunks {
		result.Chunks = append(result.Chunks, Chunk{
			Type:       c.Type,
			AIScore:    normalizeScore(c.AIScore),
			Confidence: c.Confidence,
			Text:       c.Text,
			Categories: c.Explainer.Categories,
		})
	}
	return result, nil
}

// normalizeScore maps the service's two score conventions (0..1 fraction
// or 0..100 percentage) onto a percentage.
func normalizeScore(v float64) int {
	if v <= 1 {
		return int(math.Round(v * 100))
	}
	return int(math.Round(v))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func clipBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
