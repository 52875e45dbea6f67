package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/pnl-analysis/pkg/constants"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%q) error = %v", path, err)
		}
		if cfg.Address != constants.DefaultServerAddress {
			t.Errorf("Address = %s, expected %s", cfg.Address, constants.DefaultServerAddress)
		}
		if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
			t.Errorf("UploadSizeBytes() = %d, expected %d", cfg.UploadSizeBytes(), constants.DefaultMaxUploadSizeBytes)
		}
		if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
			t.Errorf("AllowedOrigins = %v, expected wildcard", cfg.AllowedOrigins)
		}
		if cfg.Database.DSN != "" || cfg.Cache.Addr != "" {
			t.Errorf("expected no database or cache by default, got %+v %+v", cfg.Database, cfg.Cache)
		}
		if cfg.Cache.TTLSeconds != constants.DefaultCacheTTLSeconds {
			t.Errorf("Cache.TTLSeconds = %d, expected %d", cfg.Cache.TTLSeconds, constants.DefaultCacheTTLSeconds)
		}
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `address: 127.0.0.1:9000
maxUploadSize: 2M
allowedOrigins:
  - http://localhost:5173
database:
  dsn: postgres://pnl@localhost/pnl?sslmode=disable
cache:
  addr: localhost:6379
  ttlSeconds: 60
logging:
  level: debug
  format: console
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	checks := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Address", cfg.Address, "127.0.0.1:9000"},
		{"UploadSizeBytes", cfg.UploadSizeBytes(), int64(2 << 20)},
		{"MaxUploadSize", cfg.MaxUploadSize, "2097152"},
		{"AllowedOrigins", cfg.AllowedOrigins[0], "http://localhost:5173"},
		{"Database.DSN", cfg.Database.DSN, "postgres://pnl@localhost/pnl?sslmode=disable"},
		{"Cache.Addr", cfg.Cache.Addr, "localhost:6379"},
		{"Cache.TTLSeconds", cfg.Cache.TTLSeconds, 60},
		{"Logging.Level", cfg.Logging.Level, "debug"},
		{"Logging.Format", cfg.Logging.Format, "console"},
	}
	for _, c := range checks {
		if c.got != c.expected {
			t.Errorf("%s = %v, expected %v", c.name, c.got, c.expected)
		}
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `database:
  dsn: postgres://file@localhost/pnl
`)
	t.Setenv(EnvDatabaseDSN, "postgres://env@localhost/pnl")
	t.Setenv(EnvCacheAddr, "redis:6379")
	t.Setenv(EnvCachePassword, "secret")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Database.DSN != "postgres://env@localhost/pnl" {
		t.Errorf("Database.DSN = %s, expected the environment value", cfg.Database.DSN)
	}
	if cfg.Cache.Addr != "redis:6379" || cfg.Cache.Password != "secret" {
		t.Errorf("Cache = %+v, expected environment address and password", cfg.Cache)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"Bad size", "maxUploadSize: invalid"},
		{"Bad unit", "maxUploadSize: 5TB"},
		{"Bad yaml", "address: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.contents)); err == nil {
				t.Errorf("LoadConfig() expected error, got nil")
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input     string
		expected  int64
		expectErr bool
	}{
		{"", constants.DefaultMaxUploadSizeBytes, false},
		{"1024", 1024, false},
		{"512b", 512, false},
		{"256K", 256 << 10, false},
		{"64 kb", 64 << 10, false},
		{"1m", 1 << 20, false},
		{"3MB", 3 << 20, false},
		{"2G", 2 << 30, false},
		{"  4096   ", 4096, false},
		{"1TB", 0, true},
		{"abc", 0, true},
		{"1.5M", 0, true},
		{"99999999999999G", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if (err != nil) != tt.expectErr {
			t.Errorf("ParseSize(%q) error = %v, expectErr %v", tt.input, err, tt.expectErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseSize(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}
