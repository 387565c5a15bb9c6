// Package commands wires the cobra CLI: learn, search, import, update,
// serve, and the local inspection commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/index"
	"github.com/mankihq/manki/internal/store"
	"github.com/mankihq/manki/pkg/config"
	"github.com/mankihq/manki/pkg/logger"
)

var (
	configPath string
	dataDir    string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "manki",
	Short: "A searchable knowledge base of command-line documentation",
	Long: `manki builds a local knowledge base of command documentation.

It learns commands from their --help and man output, imports tldr pages,
and answers ranked full-text queries in English and Chinese, locally or
over an HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.Storage.DataDir = dataDir
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetVersion sets the version shown by --version.
func SetVersion(version string) {
	rootCmd.Version = version
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $HOME/.manki)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// env holds the opened storage layer shared by most commands.
type env struct {
	store *store.Store
	idx   *index.Manager
}

func openEnv() (*env, error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s, err := store.Open(cfg.Storage.DBPath())
	if err != nil {
		return nil, err
	}
	idx, err := index.Open(cfg.Storage.IndexDir())
	if err != nil {
		s.Close()
		return nil, err
	}
	return &env{store: s, idx: idx}, nil
}

func (e *env) Close() {
	e.store.Close()
}
