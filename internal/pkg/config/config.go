package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/RichardKnop/minidb/internal/minidb"
	"github.com/RichardKnop/minidb/internal/parser"
	"github.com/RichardKnop/minidb/internal/pkg/logging"
)

const (
	ConfigEnvVar   = "MINIDB_CONFIG"
	LogLevelEnvVar = "LOG_LEVEL"
)

type Config struct {
	LogLevel           string `yaml:"log_level"`
	MaxPages           uint32 `yaml:"max_pages"`
	SplitMode          string `yaml:"split_mode"`
	InternalMaxCells   uint32 `yaml:"internal_max_cells"`
	StatementCacheSize int    `yaml:"statement_cache_size"`
}

func Default() *Config {
	return &Config{
		LogLevel:           "info",
		MaxPages:           minidb.DefaultMaxPages,
		SplitMode:          minidb.SplitFull.String(),
		InternalMaxCells:   minidb.InternalNodeMaxCells,
		StatementCacheSize: parser.DefaultCacheSize,
	}
}

// Load reads the YAML file at configPath, falling back to the file named by
// MINIDB_CONFIG. Without either the defaults are used. LOG_LEVEL takes
// precedence over the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = os.Getenv(ConfigEnvVar)
	}

	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode config %s: %w", configPath, err)
		}
	}

	if level := os.Getenv(LogLevelEnvVar); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.MaxPages == 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if _, err := minidb.ParseSplitMode(c.SplitMode); err != nil {
		return err
	}
	if c.InternalMaxCells > minidb.InternalNodeMaxCells {
		return fmt.Errorf("internal max cells cannot exceed %d", minidb.InternalNodeMaxCells)
	}
	if c.StatementCacheSize < 0 {
		return fmt.Errorf("statement cache size cannot be negative")
	}
	return nil
}

// TableOptions converts the storage settings into table options.
func (c *Config) TableOptions() ([]minidb.Option, error) {
	splitMode, err := minidb.ParseSplitMode(c.SplitMode)
	if err != nil {
		return nil, err
	}
	return []minidb.Option{
		minidb.WithMaxPages(c.MaxPages),
		minidb.WithSplitMode(splitMode),
		minidb.WithMaxInternalCells(c.InternalMaxCells),
	}, nil
}
