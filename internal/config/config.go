// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/datetime"
	"github.com/iwvelando/pnl-analysis/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for pnl-analysis.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Report   ReportConfig   `yaml:"report,omitempty"`
	Dataset  DatasetConfig  `yaml:"dataset,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, xlsx
	File   string `yaml:"file,omitempty"`   // workbook path for xlsx
}

// ReportConfig selects the dataset year and months to analyze.
type ReportConfig struct {
	Year      int      `yaml:"year"`
	PriorYear int      `yaml:"priorYear,omitempty"` // defaults to Year-1
	UserID    string   `yaml:"userId,omitempty"`
	Months    []string `yaml:"months,omitempty"` // names or ranges; empty means all
}

// DatasetConfig selects where the report inputs come from.
type DatasetConfig struct {
	Source string `yaml:"source,omitempty"` // file, postgres
	Path   string `yaml:"path,omitempty"`
}

// DatabaseConfig holds the PostgreSQL connection string.
type DatabaseConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

// CacheConfig holds the Redis connection. An empty Addr disables caching.
type CacheConfig struct {
	Addr       string `yaml:"addr,omitempty"`
	Password   string `yaml:"password,omitempty"`
	DB         int    `yaml:"db,omitempty"`
	TTLSeconds int    `yaml:"ttlSeconds,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	v.SetEnvPrefix("PNL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"database.dsn", "cache.addr", "cache.password"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("unable to bind %s, %s", key, err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.applyDefaults()
	return &configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Output.Format == constants.OutputFormatXLSX && c.Output.File == "" {
		c.Output.File = constants.DefaultXLSXFile
	}
	if c.Dataset.Source == "" {
		c.Dataset.Source = constants.DatasetSourceFile
	}
	if c.Report.PriorYear == 0 && c.Report.Year != 0 {
		c.Report.PriorYear = c.Report.Year - 1
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = constants.DefaultCacheTTLSeconds
	}
}

// ReportMonths expands the configured month selection. An empty selection
// means the whole year.
func (c *Configuration) ReportMonths() ([]string, error) {
	if len(c.Report.Months) == 0 {
		return append([]string(nil), constants.Months...), nil
	}
	months, err := datetime.ParseMonthSelection(c.Report.Months)
	if err != nil {
		return nil, fmt.Errorf("invalid report months: %w", err)
	}
	return months, nil
}

// CacheTTL returns the cache entry lifetime.
func (c *Configuration) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Report.Year == 0 {
		warnings = append(warnings, "report.year is not set; the dataset lookup will use year 0")
	}
	if c.Report.PriorYear >= c.Report.Year && c.Report.Year != 0 {
		warnings = append(warnings, fmt.Sprintf("report.priorYear %d is not before report.year %d; year-over-year comparison will be skipped",
			c.Report.PriorYear, c.Report.Year))
	}
	if _, err := c.ReportMonths(); err != nil {
		warnings = append(warnings, err.Error())
	}
	if err := validation.ValidateDatasetSource(c.Dataset.Source); err != nil {
		warnings = append(warnings, err.Error())
	}
	if c.Dataset.Source == constants.DatasetSourceFile && c.Dataset.Path == "" {
		warnings = append(warnings, "dataset.path is required for the file source")
	}
	if c.Dataset.Source == constants.DatasetSourcePostgres && c.Database.DSN == "" {
		warnings = append(warnings, "database.dsn is required for the postgres source")
	}
	if c.Cache.TTLSeconds < 0 {
		warnings = append(warnings, "cache.ttlSeconds is negative; cached entries will not expire")
	}

	return warnings
}
