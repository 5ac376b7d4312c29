package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// Config holds all postcraft configuration.
type Config struct {
	// Core settings
	Name      string `yaml:"name"`
	Workspace string `yaml:"workspace"`

	// Generative API
	Gemini GeminiConfig `yaml:"gemini"`

	// Variation batches
	Generation GenerationConfig `yaml:"generation"`

	// Gallery and preset persistence
	Storage StorageConfig `yaml:"storage"`

	// Template overrides
	Templates TemplatesConfig `yaml:"templates"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	// Brand defaults
	Brand BrandConfig `yaml:"brand"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the generative API boundary.
type GeminiConfig struct {
	APIKey     string `yaml:"api_key"`
	ImageModel string `yaml:"image_model"`
	TextModel  string `yaml:"text_model"`
	ImageSize  string `yaml:"image_size"` // 1K, 2K, 4K
	BaseURL    string `yaml:"base_url"`   // empty = SDK default
	Timeout    string `yaml:"timeout"`    // empty or "0" = no timeout
}

// GenerationConfig configures variation batches.
type GenerationConfig struct {
	DefaultVariations int `yaml:"default_variations"`
	MaxVariations     int `yaml:"max_variations"`
	Concurrency       int `yaml:"concurrency"` // 0 = one goroutine per variation
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // sqlite, file, memory
	Path    string `yaml:"path"`    // sqlite database file or file-backend directory
}

// TemplatesConfig configures template overrides.
type TemplatesConfig struct {
	OverridePath string `yaml:"override_path"`
	Watch        bool   `yaml:"watch"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr             string `yaml:"addr"`
	MaxConns         int    `yaml:"max_conns"`
	ShutdownTimeout  string `yaml:"shutdown_timeout"`
	AuthUser         string `yaml:"auth_user"`
	AuthPasswordHash string `yaml:"auth_password_hash"` // argon2id, see `postcraft hash-password`
}

// BrandConfig holds the studio brand defaults used in prompts and exports.
type BrandConfig struct {
	Name         string `yaml:"name"`
	Primary      string `yaml:"primary"`
	Secondary    string `yaml:"secondary"`
	Text         string `yaml:"text"`
	Vibe         string `yaml:"vibe"`
	ExportPrefix string `yaml:"export_prefix"`
}

// envOverrides lists the environment variables that override file settings.
// Unset variables leave the loaded value untouched.
type envOverrides struct {
	ImageModel     string `env:"POSTCRAFT_IMAGE_MODEL"`
	TextModel      string `env:"POSTCRAFT_TEXT_MODEL"`
	GeminiBaseURL  string `env:"POSTCRAFT_GEMINI_BASE_URL"`
	StorageBackend string `env:"POSTCRAFT_STORAGE"`
	StoragePath    string `env:"POSTCRAFT_DB"`
	ServerAddr     string `env:"POSTCRAFT_ADDR"`
	LogLevel       string `env:"POSTCRAFT_LOG_LEVEL"`
	LogFormat      string `env:"POSTCRAFT_LOG_FORMAT"`
	Variations     int    `env:"POSTCRAFT_VARIATIONS"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:      "postcraft",
		Workspace: ".",

		Gemini: GeminiConfig{
			ImageModel: "gemini-3-pro-image-preview",
			TextModel:  "gemini-3-flash-preview",
			ImageSize:  "1K",
		},

		Generation: GenerationConfig{
			DefaultVariations: 2,
			MaxVariations:     4,
		},

		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    ".postcraft/postcraft.db",
		},

		Server: ServerConfig{
			Addr:            ":8080",
			MaxConns:        64,
			ShutdownTimeout: "10s",
		},

		Brand: BrandConfig{
			Name:         "F45 Training",
			Primary:      "#EE3124",
			Secondary:    "#211551",
			Text:         "#FFFFFF",
			Vibe:         "F45 Premium community.",
			ExportPrefix: "f45",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns the config file location inside a workspace.
func DefaultPath(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ".postcraft", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return err
	}

	if o.ImageModel != "" {
		c.Gemini.ImageModel = o.ImageModel
	}
	if o.TextModel != "" {
		c.Gemini.TextModel = o.TextModel
	}
	if o.GeminiBaseURL != "" {
		c.Gemini.BaseURL = o.GeminiBaseURL
	}
	if o.StorageBackend != "" {
		c.Storage.Backend = o.StorageBackend
	}
	if o.StoragePath != "" {
		c.Storage.Path = o.StoragePath
	}
	if o.ServerAddr != "" {
		c.Server.Addr = o.ServerAddr
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Variations != 0 {
		c.Generation.DefaultVariations = o.Variations
	}
	return nil
}

// GetRequestTimeout returns the per-request Gemini timeout. Zero means none.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// GetShutdownTimeout returns the HTTP server shutdown grace period.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ResolvePath resolves p against the workspace unless it is absolute.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	ws := c.Workspace
	if ws == "" {
		ws = "."
	}
	return filepath.Join(ws, p)
}

// ValidBackends lists all supported storage backends.
var ValidBackends = []string{"sqlite", "file", "memory"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validBackend := false
	for _, b := range ValidBackends {
		if c.Storage.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid storage backend: %s (valid: %v)", c.Storage.Backend, ValidBackends)
	}
	if c.Storage.Backend != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("storage path required for %s backend", c.Storage.Backend)
	}

	if c.Generation.MaxVariations < 1 {
		return fmt.Errorf("generation.max_variations must be at least 1")
	}
	if c.Generation.DefaultVariations < 1 || c.Generation.DefaultVariations > c.Generation.MaxVariations {
		return fmt.Errorf("generation.default_variations must be between 1 and %d", c.Generation.MaxVariations)
	}
	if c.Generation.Concurrency < 0 {
		return fmt.Errorf("generation.concurrency must not be negative")
	}

	if c.Gemini.ImageModel == "" || c.Gemini.TextModel == "" {
		return fmt.Errorf("gemini image_model and text_model are required")
	}

	if (c.Server.AuthUser == "") != (c.Server.AuthPasswordHash == "") {
		return fmt.Errorf("server auth_user and auth_password_hash must be set together")
	}

	return nil
}

// AuthEnabled returns whether the HTTP API requires basic auth.
func (c *Config) AuthEnabled() bool {
	return c.Server.AuthUser != "" && c.Server.AuthPasswordHash != ""
}
