// Package config loads and validates application configuration from a YAML
// file with environment-variable overrides. It provides typed structs for
// every subsystem (Storage, Search, Learn, Update, Server, Cache, Logging,
// Metrics).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Learn   LearnConfig   `yaml:"learn"`
	Update  UpdateConfig  `yaml:"update"`
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig holds the data directory layout. DataDir empty means
// $HOME/.manki.
type StorageConfig struct {
	DataDir      string `yaml:"dataDir"`
	DBFilename   string `yaml:"dbFilename"`
	IndexDirname string `yaml:"indexDirname"`
	LogDirname   string `yaml:"logDirname"`
}

// DBPath returns the record store file path.
func (s StorageConfig) DBPath() string {
	return filepath.Join(s.DataDir, s.DBFilename)
}

// IndexDir returns the directory holding index segments and the manifest.
func (s StorageConfig) IndexDir() string {
	return filepath.Join(s.DataDir, s.IndexDirname)
}

// LogDir returns the directory for serve-mode log files.
func (s StorageConfig) LogDir() string {
	return filepath.Join(s.DataDir, s.LogDirname)
}

// BoostConfig sets the per-field relevance multipliers. Name must outrank
// description, which must outrank content.
type BoostConfig struct {
	Name        float64 `yaml:"name"`
	Description float64 `yaml:"description"`
	Content     float64 `yaml:"content"`
}

// SearchConfig controls query execution limits and ranking boosts.
type SearchConfig struct {
	DefaultLimit int         `yaml:"defaultLimit"`
	MaxResults   int         `yaml:"maxResults"`
	DefaultLang  string      `yaml:"defaultLang"`
	Boosts       BoostConfig `yaml:"boosts"`
}

// LearnConfig bounds example synthesis from help and man output.
type LearnConfig struct {
	MaxExamples       int `yaml:"maxExamples"`
	MaxOptionExamples int `yaml:"maxOptionExamples"`
}

// UpdateConfig points at the upstream tldr-pages releases.
type UpdateConfig struct {
	GithubAPIURL        string        `yaml:"githubApiUrl"`
	DownloadURLTemplate string        `yaml:"downloadUrlTemplate"`
	UserAgent           string        `yaml:"userAgent"`
	FallbackVersion     string        `yaml:"fallbackVersion"`
	Languages           []string      `yaml:"languages"`
	Timeout             time.Duration `yaml:"timeout"`
}

// ServerConfig holds HTTP server settings for serve mode.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Bind            string        `yaml:"bind"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// CacheConfig holds the optional redis query cache settings. Disabled by
// default; serve mode degrades gracefully when redis is unreachable.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	TTL      time.Duration `yaml:"ttl"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if cfg.Storage.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.Storage.DataDir = filepath.Join(home, ".manki")
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DBFilename:   "manki.db",
			IndexDirname: "index",
			LogDirname:   "logs",
		},
		Search: SearchConfig{
			DefaultLimit: 10,
			MaxResults:   50,
			DefaultLang:  "en",
			Boosts: BoostConfig{
				Name:        3.0,
				Description: 2.0,
				Content:     1.0,
			},
		},
		Learn: LearnConfig{
			MaxExamples:       10,
			MaxOptionExamples: 5,
		},
		Update: UpdateConfig{
			GithubAPIURL:        "https://api.github.com/repos/tldr-pages/tldr/releases/latest",
			DownloadURLTemplate: "https://github.com/tldr-pages/tldr/releases/download/v{version}/tldr-pages.zip",
			UserAgent:           "manki-updater",
			FallbackVersion:     "2.2",
			Timeout:             60 * time.Second,
		},
		Server: ServerConfig{
			Port:            3030,
			Bind:            "127.0.0.1",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			PoolSize: 10,
			TTL:      60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads MANKI_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MANKI_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("MANKI_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MANKI_SERVER_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("MANKI_SEARCH_DEFAULT_LANG"); v != "" {
		cfg.Search.DefaultLang = v
	}
	if v := os.Getenv("MANKI_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("MANKI_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("MANKI_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("MANKI_UPDATE_LANGUAGES"); v != "" {
		cfg.Update.Languages = strings.Split(v, ",")
	}
	if v := os.Getenv("MANKI_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MANKI_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("MANKI_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("MANKI_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
