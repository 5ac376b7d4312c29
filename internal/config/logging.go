package config

import (
	"path/filepath"

	"postcraft/internal/logging"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`           // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty"`         // json, console
	File       string          `yaml:"file" json:"file,omitempty"`             // extra output path
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"` // forces debug level
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"` // per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Options converts the config into logging options.
func (c *LoggingConfig) Options(workspace string) logging.Options {
	file := c.File
	if file != "" && workspace != "" && !filepath.IsAbs(file) {
		file = filepath.Join(workspace, file)
	}
	return logging.Options{
		Level:      c.Level,
		Format:     c.Format,
		File:       file,
		DebugMode:  c.DebugMode,
		Categories: c.Categories,
	}
}
