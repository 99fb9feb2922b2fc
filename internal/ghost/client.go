// Package ghost publishes Markdown documents to a Ghost blog through its
// Admin API.
package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
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

	"github.com/golang-jwt/jwt/v5"
)

const maxResponseSize = 4 << 20 // 4 MB

// APIError reports a non-success response from the Admin API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ghost: api returned %d: %s", e.Status, e.Body)
}

// Post is the Admin API post resource, trimmed to the fields this tool
// reads and writes.
type Post struct {
	ID              string   `json:"id,omitempty"`
	Title           string   `json:"title,omitempty"`
	Slug            string   `json:"slug,omitempty"`
	HTML            string   `json:"html,omitempty"`
	Status          string   `json:"status,omitempty"`
	URL             string   `json:"url,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
	FeatureImage    string   `json:"feature_image,omitempty"`
	CustomExcerpt   string   `json:"custom_excerpt,omitempty"`
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

type postEnvelope struct {
	Posts []Post `json:"posts"`
}

type imageEnvelope struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// Client talks to one Ghost installation. Requests authenticate with a
// short-lived token minted from the Admin API key on every call.
type Client struct {
	apiURL string
	keyID  string
	secret []byte
	client *http.Client
}

// NewClient parses an Admin API key of the form "id:hexsecret" and returns
// a client for the installation at apiURL.
func NewClient(apiURL, adminKey string) (*Client, error) {
	id, hexSecret, ok := strings.Cut(adminKey, ":")
	if !ok || id == "" || hexSecret == "" {
		return nil, fmt.Errorf("ghost: admin key must look like id:secret")
	}
	secret, err := hex.DecodeString(hexSecret)
	if err != nil {
		return nil, fmt.Errorf("ghost: decode admin key secret: %w", err)
	}
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		keyID:  id,
		secret: secret,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// token mints the five-minute JWT the Admin API expects: HS256, kid header,
// audience /admin/.
func (c *Client) token() (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/admin/",
	})
	t.Header["kid"] = c.keyID
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("ghost: sign token: %w", err)
	}
	return signed, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("ghost: build request: %w", err)
	}
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ghost: %s %s: %w", method, path, err)
	}
	return resp, nil
}

// decodePost consumes a response expected to carry a posts envelope.
func decodePost(resp *http.Response, wantStatus int) (*Post, error) {
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("ghost: read response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	var envelope postEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("ghost: decode response: %w", err)
	}
	if len(envelope.Posts) == 0 {
		return nil, fmt.Errorf("ghost: empty posts envelope")
	}
	return &envelope.Posts[0], nil
}

// CreatePost creates a post from HTML content. The zero Status publishes
// as a draft.
func (c *Client) CreatePost(ctx context.Context, post Post) (*Post, error) {
	if post.Status == "" {
		post.Status = "draft"
	}
	payload, err := json.Marshal(postEnvelope{Posts: []Post{post}})
	if err != nil {
		return nil, fmt.Errorf("ghost: encode post: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/ghost/api/admin/posts/?source=html", bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}
	return decodePost(resp, http.StatusCreated)
}

// GetPost fetches a post together with its HTML content.
func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	resp, err := c.do(ctx, http.MethodGet, "/ghost/api/admin/posts/"+id+"/?formats=html", nil, "")
	if err != nil {
		return nil, err
	}
	return decodePost(resp, http.StatusOK)
}

// UpdatePost writes changed fields back. Ghost requires the post's current
// updated_at for collision detection; when the caller leaves it empty the
// current value is fetched first.
func (c *Client) UpdatePost(ctx context.Context, post Post) (*Post, error) {
	if post.ID == "" {
		return nil, fmt.Errorf("ghost: update requires a post id")
	}
	if post.UpdatedAt == "" {
		current, err := c.GetPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		post.UpdatedAt = current.UpdatedAt
	}
	payload, err := json.Marshal(postEnvelope{Posts: []Post{post}})
	if err != nil {
		return nil, fmt.Errorf("ghost: encode post: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, "/ghost/api/admin/posts/"+post.ID+"/", bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}
	return decodePost(resp, http.StatusOK)
}

// UploadImage pushes a local image into Ghost's own storage and returns
// the URL it is served from.
func (c *Client) UploadImage(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("ghost: read %s: %w", path, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(path)))
	hdr.Set("Content-Type", imageContentType(path))
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return "", fmt.Errorf("ghost: create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("ghost: write form part: %w", err)
	}
	if err := mw.WriteField("purpose", "image"); err != nil {
		return "", fmt.Errorf("ghost: write purpose field: %w", err)
	}
	if err := mw.WriteField("ref", filepath.Base(path)); err != nil {
		return "", fmt.Errorf("ghost: write ref field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("ghost: close multipart body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/ghost/api/admin/images/upload/", &body, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("ghost: read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	var envelope imageEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("ghost: decode response: %w", err)
	}
	if len(envelope.Images) == 0 || envelope.Images[0].URL == "" {
		return "", fmt.Errorf("ghost: empty images envelope")
	}
	return envelope.Images[0].URL, nil
}

// SetFeaturedImage uploads a local image and attaches it to the post.
func (c *Client) SetFeaturedImage(ctx context.Context, postID, imagePath string) (*Post, error) {
	url, err := c.UploadImage(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	return c.UpdatePost(ctx, Post{ID: postID, FeatureImage: url})
}

var imageMimes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

func imageContentType(name string) string {
	if mt, ok := imageMimes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "application/octet-stream"
}
