package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/pnl-analysis/internal/config"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file, so secrets can stay out of it.
const (
	EnvDatabaseDSN   = "PNL_DATABASE_DSN"
	EnvCacheAddr     = "PNL_CACHE_ADDR"
	EnvCachePassword = "PNL_CACHE_PASSWORD"
)

// Config defines runtime parameters for the HTTP server. An empty database
// DSN serves only the stateless endpoints; an empty cache address computes
// every analysis directly.
type Config struct {
	Address         string                `yaml:"address"`
	MaxUploadSize   string                `yaml:"maxUploadSize"`
	AllowedOrigins  []string              `yaml:"allowedOrigins"`
	Logging         config.LoggingConfig  `yaml:"logging"`
	Database        config.DatabaseConfig `yaml:"database"`
	Cache           config.CacheConfig    `yaml:"cache"`
	uploadSizeBytes int64
}

// LoadConfig reads the server configuration from YAML and applies
// environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the import upload limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvCacheAddr); v != "" {
		c.Cache.Addr = v
	}
	if v := os.Getenv(EnvCachePassword); v != "" {
		c.Cache.Password = v
	}
}

func (c *Config) applyDefaults() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = constants.DefaultCacheTTLSeconds
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	c.MaxUploadSize = strconv.FormatInt(size, 10)
	return nil
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize converts sizes such as "256K" or "10MB" to bytes. Units are
// binary and case-insensitive; an empty value is the default upload size.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	digits := strings.TrimRightFunc(trimmed, func(r rune) bool { return !unicode.IsDigit(r) })
	unit := strings.TrimSpace(trimmed[len(digits):])
	if digits == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n > 0 && n > (1<<62)/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
