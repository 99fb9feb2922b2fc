package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testSettings struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *testSettings) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("CONFIG_TEST_NAME", "expanded")
	path := writeYAML(t, "name: ${CONFIG_TEST_NAME}\nport: 9000\n")

	var got testSettings
	if err := Load(path, &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "expanded" {
		t.Errorf("name = %q, want env expansion", got.Name)
	}
	if got.Port != 9000 {
		t.Errorf("port = %d", got.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var got testSettings
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &got); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_ValidatorRejects(t *testing.T) {
	path := writeYAML(t, "name: x\nport: -1\n")

	var got testSettings
	err := Load(path, &got)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "port must be positive") {
		t.Errorf("error = %v", err)
	}
}

func TestLoadIfExists(t *testing.T) {
	var got testSettings
	found, err := LoadIfExists(filepath.Join(t.TempDir(), "absent.yaml"), &got)
	if err != nil {
		t.Fatalf("LoadIfExists on missing file: %v", err)
	}
	if found {
		t.Error("found = true for missing file")
	}

	path := writeYAML(t, "name: here\nport: 1\n")
	found, err = LoadIfExists(path, &got)
	if err != nil {
		t.Fatalf("LoadIfExists: %v", err)
	}
	if !found || got.Name != "here" {
		t.Errorf("found = %v, settings = %+v", found, got)
	}
}
