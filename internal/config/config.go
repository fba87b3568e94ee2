package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: extract.retry_delay is read
// from HEARINGLIST_EXTRACT_RETRY_DELAY.
const EnvPrefix = "HEARINGLIST"

type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	DataDir     string `mapstructure:"data_dir"`
	HearingType string `mapstructure:"hearing_type"`
	FilePattern string `mapstructure:"file_pattern"`

	Extract ExtractConfig `mapstructure:"extract"`
	Clean   CleanConfig   `mapstructure:"clean"`
	Store   StoreConfig   `mapstructure:"store"`
	Server  ServerConfig  `mapstructure:"server"`
	PDF     PDFConfig     `mapstructure:"pdf"`
}

type ExtractConfig struct {
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	MinFirstPageChars int           `mapstructure:"min_first_page_chars"`
	MarginTolerance   float64       `mapstructure:"margin_tolerance"`
	LineScale         float64       `mapstructure:"line_scale"`
}

type CleanConfig struct {
	// Vocabulary is an optional YAML file replacing the built-in noise words.
	Vocabulary string `mapstructure:"vocabulary"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	APIKey         string        `mapstructure:"api_key"`
	Workers        int           `mapstructure:"workers"`
	MaxQueue       int           `mapstructure:"max_queue"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	JobTTL         time.Duration `mapstructure:"job_ttl"`
}

type PDFConfig struct {
	FallbackPdftotext bool `mapstructure:"fallback_pdftotext"`
}

var defaults = map[string]any{
	"log_level":                    "info",
	"data_dir":                     "",
	"hearing_type":                 "all",
	"file_pattern":                 "liste",
	"extract.retry_delay":          500 * time.Millisecond,
	"extract.min_first_page_chars": 10,
	"extract.margin_tolerance":     1.0,
	"extract.line_scale":           25.0,
	"clean.vocabulary":             "",
	"store.path":                   "hearinglist.db",
	"server.port":                  8090,
	"server.api_key":               "",
	"server.workers":               2,
	"server.max_queue":             100,
	"server.max_upload_bytes":      52428800, // 50MB
	"server.job_ttl":               time.Hour,
	"pdf.fallback_pdftotext":       true,
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"data-dir":  "data_dir",
	"type":      "hearing_type",
	"pattern":   "file_pattern",
	"db":        "store.path",
	"port":      "server.port",
}

// NewFlagSet returns the flags every command understands. Commands add
// their own flags before calling Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "YAML config file")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("data-dir", "", "corpus root holding metadata.csv and hearings/")
	fs.String("type", "all", "hearing type: all or bill")
	fs.String("pattern", "liste", "file name substring selecting hearing lists")
	fs.String("db", "hearinglist.db", "SQLite database path")
	fs.Int("port", 8090, "HTTP port")
	return fs
}

// Load parses args into fs and layers defaults, the optional --config file,
// HEARINGLIST_* environment variables and explicitly set flags, in that
// order of precedence.
func Load(fs *pflag.FlagSet, args []string) (Config, error) {
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings shared by every command.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.HearingType {
	case "all", "bill":
	default:
		return fmt.Errorf("hearing_type must be all or bill, got %q", c.HearingType)
	}
	if c.Extract.LineScale <= 0 {
		return fmt.Errorf("extract.line_scale must be positive")
	}
	if c.Extract.MarginTolerance < 0 {
		return fmt.Errorf("extract.margin_tolerance must not be negative")
	}
	if c.Extract.RetryDelay < 0 {
		return fmt.Errorf("extract.retry_delay must not be negative")
	}
	return nil
}

// ValidateServer adds the checks needed by the HTTP service.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.APIKey == "" {
		return fmt.Errorf("server.api_key is required (%s_SERVER_API_KEY)", EnvPrefix)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.Workers <= 0 {
		return fmt.Errorf("server.workers must be positive")
	}
	if c.Server.MaxQueue <= 0 {
		return fmt.Errorf("server.max_queue must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	return nil
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return lvl, fmt.Errorf("invalid log_level %q", s)
	}
	return lvl, nil
}
