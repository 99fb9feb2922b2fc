package internal

import (
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/ansuz/internal/detector"
	"github.com/starford/ansuz/internal/genimage"
	"github.com/starford/ansuz/internal/render"
)

// DefaultConfigName is the file looked up in the working directory when
// --config is not given.
const DefaultConfigName = "ansuz.yaml"

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Uploader UploaderConfig    `yaml:"uploader"`
	Renderer RendererConfig    `yaml:"renderer"`
	Ghost    GhostConfig       `yaml:"ghost"`
	Detector DetectorConfig    `yaml:"detector"`
	Images   ImagesConfig      `yaml:"images"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Uploader.Validate(); err != nil {
		return err
	}
	if err := c.Renderer.Validate(); err != nil {
		return err
	}
	if err := c.Ghost.Validate(); err != nil {
		return err
	}
	if err := c.Detector.Validate(); err != nil {
		return err
	}
	return c.Images.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// UploaderConfig selects and configures the asset store: the webhook
// backend by default, Google Cloud Storage when use_gcs is set. The
// section is required only by the build command.
type UploaderConfig struct {
	BackendURL string `yaml:"backend_url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	UseGCS     bool   `yaml:"use_gcs"`
	GCSBucket  string `yaml:"gcs_bucket"`
}

// Validate validates the uploader configuration.
func (c *UploaderConfig) Validate() error {
	if c.UseGCS {
		return validation.ValidateStruct(c,
			validation.Field(&c.GCSBucket, validation.Required),
		)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BackendURL, is.URL),
	)
}

// Configured returns true when the build command has an asset store to
// upload to.
func (c *UploaderConfig) Configured() bool {
	if c.UseGCS {
		return c.GCSBucket != ""
	}
	return c.BackendURL != ""
}

// RendererConfig holds the diagram render service address.
type RendererConfig struct {
	URL string `yaml:"url"`
}

// Validate validates the renderer configuration.
func (c *RendererConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, is.URL),
	)
}

// GhostConfig holds Ghost Admin API credentials. The section is optional:
// leave it empty unless the publish command is used.
type GhostConfig struct {
	APIURL      string `yaml:"api_url"`
	AdminAPIKey string `yaml:"admin_api_key"`
}

// Validate validates the Ghost configuration.
func (c *GhostConfig) Validate() error {
	if c.APIURL == "" && c.AdminAPIKey == "" {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.AdminAPIKey, validation.Required),
	)
}

// Configured returns true when the publish command can run.
func (c *GhostConfig) Configured() bool {
	return c.APIURL != "" && c.AdminAPIKey != ""
}

// DetectorConfig holds the AI-content-detection service settings. The
// section is optional: leave it empty unless the check command is used.
type DetectorConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Validate validates the detector configuration.
func (c *DetectorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, is.URL),
	)
}

// Configured returns true when the check command can run.
func (c *DetectorConfig) Configured() bool {
	return c.Token != ""
}

// ImagesConfig holds the generative-image service settings. The section is
// optional: leave it empty unless the genimage command is used.
type ImagesConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Size   string `yaml:"size"`
}

// Validate validates the images configuration.
func (c *ImagesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, is.URL),
	)
}

// Configured returns true when the genimage command can run.
func (c *ImagesConfig) Configured() bool {
	return c.URL != "" && c.APIKey != ""
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Renderer: RendererConfig{
			URL: render.DefaultURL,
		},
		Detector: DetectorConfig{
			URL: detector.DefaultURL,
		},
		Images: ImagesConfig{
			Size: genimage.DefaultSize,
		},
	}
}

// ResolveConfigPath returns the first config file present in the search
// order: ./ansuz.yaml, then $HOME/.config/ansuz/config.yaml. Returns the
// empty string when neither exists.
func ResolveConfigPath() string {
	if _, err := os.Stat(DefaultConfigName); err == nil {
		return DefaultConfigName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".config", "ansuz", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// WriteExample writes a starter configuration to path.
func WriteExample(path string) error {
	return os.WriteFile(path, []byte(exampleConfig), 0o600)
}

const exampleConfig = `app:
  # -4: debug, 0: info, 4: warn, 8: error
  log_level: 0

uploader:
  backend_url: https://example.com/webhook/upload
  username: ${ANSUZ_USERNAME}
  password: ${ANSUZ_PASSWORD}
  use_gcs: false
  gcs_bucket: my-bucket.appspot.com

renderer:
  url: https://kroki.io

# Optional sections: fill in only the features you use.

ghost:
  api_url: ""
  admin_api_key: ""

detector:
  url: https://quillbot.com
  token: ${QUILLBOT_TOKEN}

images:
  url: ""
  api_key: ""
  size: 1024x1024
`
