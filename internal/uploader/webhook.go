package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxResponseSize = 1 << 20 // 1 MB

// Webhook uploads assets to an HTTP endpoint as multipart/form-data: a
// "data" file part plus a "folder" field, optionally basic-auth protected.
// Success is a 200 response whose JSON body carries the public URL.
type Webhook struct {
	url      string
	username string
	password string
	client   *http.Client
}

var _ Store = (*Webhook)(nil)

// NewWebhook returns a webhook-backed store. Credentials may be empty for
// unauthenticated endpoints.
func NewWebhook(url, username, password string) *Webhook {
	return &Webhook{
		url:      url,
		username: username,
		password: password,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type webhookResponse struct {
	PublicURL string `json:"public_url"`
}

// Upload posts the file at path and returns the public URL the backend
// assigned to it.
func (w *Webhook) Upload(ctx context.Context, path, folder string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("uploader: read %s: %w", path, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="data"; filename="%s"`, filepath.Base(path)))
	hdr.Set("Content-Type", contentTypeFor(path))
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return "", fmt.Errorf("uploader: create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("uploader: write form part: %w", err)
	}
	if err := mw.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("uploader: write folder field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("uploader: close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, &body)
	if err != nil {
		return "", fmt.Errorf("uploader: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if w.username != "" || w.password != "" {
		req.SetBasicAuth(w.username, w.password)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploader: post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("uploader: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UploadError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var decoded webhookResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &UploadError{Status: resp.StatusCode, Message: "undecodable response body"}
	}
	if decoded.PublicURL == "" {
		return "", &UploadError{Status: resp.StatusCode, Message: "response missing public_url"}
	}
	return decoded.PublicURL, nil
}
