package uploader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func tempImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("imagebytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestWebhook_Upload(t *testing.T) {
	var gotAuthUser, gotAuthPass, gotFolder, gotFilename, gotPartType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		gotFolder = r.FormValue("folder")
		file, header, err := r.FormFile("data")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotPartType = header.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_url": "https://cdn.example.com/blog/pic.png"}`))
	}))
	defer srv.Close()

	store := NewWebhook(srv.URL, "user", "secret")
	url, err := store.Upload(context.Background(), tempImage(t, "pic.png"), "myfolder")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://cdn.example.com/blog/pic.png" {
		t.Errorf("url = %q", url)
	}
	if gotAuthUser != "user" || gotAuthPass != "secret" {
		t.Errorf("basic auth = %q:%q", gotAuthUser, gotAuthPass)
	}
	if gotFolder != "myfolder" {
		t.Errorf("folder = %q", gotFolder)
	}
	if gotFilename != "pic.png" {
		t.Errorf("filename = %q", gotFilename)
	}
	if gotPartType != "image/png" {
		t.Errorf("part content-type = %q", gotPartType)
	}
	if string(gotBody) != "imagebytes" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestWebhook_NoAuthHeaderWithoutCredentials(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, sawAuth = r.BasicAuth()
		_, _ = w.Write([]byte(`{"public_url": "https://cdn/x.png"}`))
	}))
	defer srv.Close()

	store := NewWebhook(srv.URL, "", "")
	if _, err := store.Upload(context.Background(), tempImage(t, "x.png"), "f"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if sawAuth {
		t.Error("unexpected Authorization header")
	}
}

func TestWebhook_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewWebhook(srv.URL, "u", "p")
	_, err := store.Upload(context.Background(), tempImage(t, "x.png"), "f")
	if err == nil {
		t.Fatal("expected error")
	}
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("error type = %T", err)
	}
	if ue.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", ue.Status)
	}
	if ue.Message != "storage exploded" {
		t.Errorf("message = %q", ue.Message)
	}
}

func TestWebhook_MissingPublicURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer srv.Close()

	store := NewWebhook(srv.URL, "u", "p")
	_, err := store.Upload(context.Background(), tempImage(t, "x.png"), "f")
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UploadError, got %v", err)
	}
}

func TestWebhook_UnreadableFile(t *testing.T) {
	store := NewWebhook("http://unused.invalid", "", "")
	_, err := store.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.png"), "f")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var ue *UploadError
	if errors.As(err, &ue) {
		t.Errorf("local read failure should not be an UploadError: %v", err)
	}
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"a.png":  "image/png",
		"b.JPG":  "image/jpeg",
		"c.jpeg": "image/jpeg",
		"d.gif":  "image/gif",
		"e.svg":  "image/svg+xml",
		"f.webp": "image/webp",
		"g.bmp":  "image/bmp",
		"h.ico":  "image/x-icon",
		"i.bin":  "application/octet-stream",
		"noext":  "application/octet-stream",
	}
	for name, want := range cases {
		if got := contentTypeFor(name); got != want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestGCSNaming(t *testing.T) {
	object := objectName("trip-report", "photo.jpg")
	if object != "public/blog/trip-report/photo.jpg" {
		t.Errorf("objectName = %q", object)
	}
	url := publicURL("my-bucket", object)
	if url != "https://storage.googleapis.com/my-bucket/public/blog/trip-report/photo.jpg" {
		t.Errorf("publicURL = %q", url)
	}
}
