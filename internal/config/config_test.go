package config

import (
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "postcraft" {
		t.Errorf("expected Name=postcraft, got %s", cfg.Name)
	}
	if cfg.Gemini.ImageModel != "gemini-3-pro-image-preview" {
		t.Errorf("expected image model gemini-3-pro-image-preview, got %s", cfg.Gemini.ImageModel)
	}
	if cfg.Generation.DefaultVariations != 2 {
		t.Errorf("expected DefaultVariations=2, got %d", cfg.Generation.DefaultVariations)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("POSTCRAFT_STORAGE", "")
	t.Setenv("POSTCRAFT_DB", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "postcraft.yaml")

	cfg := DefaultConfig()
	cfg.Storage.Backend = "file"
	cfg.Storage.Path = "data"
	cfg.Gemini.APIKey = "test-key"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Storage.Backend != "file" {
		t.Errorf("expected Backend=file, got %s", loaded.Storage.Backend)
	}
	if loaded.Gemini.APIKey != "test-key" {
		t.Errorf("expected APIKey=test-key, got %s", loaded.Gemini.APIKey)
	}
}

func TestConfig_LoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("expected default backend sqlite, got %s", cfg.Storage.Backend)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"memory needs no path", func(c *Config) { c.Storage.Backend = "memory"; c.Storage.Path = "" }, false},
		{"file needs path", func(c *Config) { c.Storage.Backend = "file"; c.Storage.Path = "" }, true},
		{"too many variations", func(c *Config) { c.Generation.DefaultVariations = 9 }, true},
		{"zero variations", func(c *Config) { c.Generation.DefaultVariations = 0 }, true},
		{"negative concurrency", func(c *Config) { c.Generation.Concurrency = -1 }, true},
		{"half auth", func(c *Config) { c.Server.AuthUser = "studio" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetRequestTimeout(); got != 0 {
		t.Errorf("expected no request timeout by default, got %v", got)
	}
	cfg.Gemini.Timeout = "90s"
	if got := cfg.GetRequestTimeout(); got != 90*time.Second {
		t.Errorf("expected 90s, got %v", got)
	}
	cfg.Server.ShutdownTimeout = "garbage"
	if got := cfg.GetShutdownTimeout(); got != 10*time.Second {
		t.Errorf("expected fallback 10s, got %v", got)
	}
}

func TestConfig_ResolvePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workspace = "/srv/studio"
	if got := cfg.ResolvePath(".postcraft/postcraft.db"); got != "/srv/studio/.postcraft/postcraft.db" {
		t.Errorf("unexpected resolved path %s", got)
	}
	if got := cfg.ResolvePath("/abs/db"); got != "/abs/db" {
		t.Errorf("absolute path changed: %s", got)
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath("/srv/studio"); got != "/srv/studio/.postcraft/config.yaml" {
		t.Errorf("unexpected default path %s", got)
	}
	if got := DefaultPath(""); got != filepath.Join(".postcraft", "config.yaml") {
		t.Errorf("unexpected default path %s", got)
	}
}
