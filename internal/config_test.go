package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/pkg/config"
)

func TestUploaderConfig_EmptySectionPasses(t *testing.T) {
	cfg := UploaderConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty uploader section should pass: %v", err)
	}
	if cfg.Configured() {
		t.Error("empty uploader section should not be configured")
	}
}

func TestUploaderConfig_Webhook(t *testing.T) {
	cfg := UploaderConfig{BackendURL: "https://hooks.example.com/upload"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("webhook uploader should pass: %v", err)
	}
	if !cfg.Configured() {
		t.Error("webhook uploader should be configured")
	}

	cfg.BackendURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Error("malformed backend url should fail")
	}
}

func TestUploaderConfig_GCS(t *testing.T) {
	cfg := UploaderConfig{UseGCS: true}
	if err := cfg.Validate(); err == nil {
		t.Error("gcs without bucket should fail")
	}
	if cfg.Configured() {
		t.Error("gcs without bucket should not be configured")
	}

	cfg.GCSBucket = "my-bucket.appspot.com"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("gcs with bucket should pass: %v", err)
	}
	if !cfg.Configured() {
		t.Error("gcs with bucket should be configured")
	}
}

func TestGhostConfig(t *testing.T) {
	cfg := GhostConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty ghost section should pass: %v", err)
	}
	if cfg.Configured() {
		t.Error("empty ghost section should not be configured")
	}

	cfg = GhostConfig{APIURL: "https://blog.ghost.io"}
	if err := cfg.Validate(); err == nil {
		t.Error("ghost url without key should fail")
	}

	cfg = GhostConfig{APIURL: "https://blog.ghost.io", AdminAPIKey: "id:secret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("full ghost section should pass: %v", err)
	}
	if !cfg.Configured() {
		t.Error("full ghost section should be configured")
	}
}

func TestDetectorConfig(t *testing.T) {
	cfg := DetectorConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty detector section should pass: %v", err)
	}
	if cfg.Configured() {
		t.Error("detector without token should not be configured")
	}

	cfg.Token = "usertoken"
	if !cfg.Configured() {
		t.Error("detector with token should be configured")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Renderer.URL == "" {
		t.Error("default renderer url missing")
	}
	if cfg.App.LogLevel != slog.LevelInfo {
		t.Errorf("default log level = %v", cfg.App.LogLevel)
	}
}

func TestConfigLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("ANSUZ_TEST_PASSWORD", "hunter2")

	path := filepath.Join(t.TempDir(), "ansuz.yaml")
	content := `app:
  log_level: -4

uploader:
  backend_url: https://hooks.example.com/upload
  username: publisher
  password: ${ANSUZ_TEST_PASSWORD}

detector:
  token: tok
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := NewDefaultConfig()
	if err := config.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Uploader.Password != "hunter2" {
		t.Errorf("password = %q, want env expansion", cfg.Uploader.Password)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.Renderer.URL == "" {
		t.Error("renderer default lost on load")
	}
	if !cfg.Detector.Configured() {
		t.Error("detector token not loaded")
	}
}

func TestConfigLoad_InvalidFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ansuz.yaml")
	content := "uploader:\n  backend_url: not a url\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := NewDefaultConfig()
	if err := config.Load(path, cfg); err == nil {
		t.Error("invalid config should fail validation on load")
	}
}

func TestResolveConfigPath(t *testing.T) {
	work := t.TempDir()
	home := t.TempDir()
	t.Chdir(work)
	t.Setenv("HOME", home)

	if got := ResolveConfigPath(); got != "" {
		t.Errorf("ResolveConfigPath() = %q, want empty", got)
	}

	userPath := filepath.Join(home, ".config", "ansuz", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(userPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(userPath, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := ResolveConfigPath(); got != userPath {
		t.Errorf("ResolveConfigPath() = %q, want %q", got, userPath)
	}

	if err := os.WriteFile(DefaultConfigName, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := ResolveConfigPath(); got != DefaultConfigName {
		t.Errorf("ResolveConfigPath() = %q, want working directory file first", got)
	}
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ansuz.yaml")
	if err := WriteExample(path); err != nil {
		t.Fatalf("WriteExample: %v", err)
	}

	cfg := NewDefaultConfig()
	if err := config.Load(path, cfg); err != nil {
		t.Fatalf("example config should load cleanly: %v", err)
	}
	if cfg.Uploader.BackendURL == "" {
		t.Error("example config missing uploader backend url")
	}
}
