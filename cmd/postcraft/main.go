package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"postcraft/internal/config"
	"postcraft/internal/logging"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	workspace  string
	configPath string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "postcraft",
	Short: "postcraft - branded Instagram graphics from studio templates",
	Long: `postcraft fills a studio template, assembles an image prompt and asks the
Gemini image model for branded social-media graphics. Results are kept in a
local gallery; form settings can be saved as presets.

Run "postcraft serve" to back the browser form with the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		opts := cfg.Logging.Options(cfg.Workspace)
		if verbose {
			opts.DebugMode = true
		}
		logger, err = logging.Initialize(opts)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// loadConfig reads the workspace config and applies global flags.
func loadConfig() (*config.Config, error) {
	ws := workspace
	if ws == "" {
		ws = "."
	}
	path := configPath
	if path == "" {
		path = config.DefaultPath(ws)
	}

	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if workspace != "" || c.Workspace == "" || c.Workspace == "." {
		c.Workspace = ws
	}
	if abs, err := filepath.Abs(c.Workspace); err == nil {
		c.Workspace = abs
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.postcraft/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(captionsCmd)
	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
