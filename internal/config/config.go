package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/eggplant-lab/eggplant/internal/upload"
)

const (
	EnvAPIURL   = "EGGPLANT_API_URL"
	EnvDataDir  = "EGGPLANT_DATA_DIR"
	EnvLogLevel = "EGGPLANT_LOG_LEVEL"
	EnvLogFile  = "EGGPLANT_LOG_FILE"
	EnvTimeout  = "EGGPLANT_TIMEOUT"
	EnvStorage  = "EGGPLANT_STORAGE"
)

// Storage backends for the history slot
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

var validate = validator.New()

// Config holds settings shared by every command
type Config struct {
	APIURL   string `yaml:"api_url" validate:"required,url"`
	DataDir  string `yaml:"data_dir" validate:"required"`
	Storage  string `yaml:"storage" validate:"oneof=file sqlite"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFile  string `yaml:"log_file"`
	// Timeout optionally bounds a submission. Empty means no bound.
	Timeout string `yaml:"timeout"`
}

// Load reads the YAML file at path if given, then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.loadEnv()
	cfg.loadDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *Config) loadDefaults() {
	if c.APIURL == "" {
		c.APIURL = upload.DefaultBaseURL
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Storage == "" {
		c.Storage = StorageFile
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
		}
	}
	return nil
}

// Overrides carries command line values. Empty fields leave the loaded
// value in place.
type Overrides struct {
	APIURL   string
	DataDir  string
	Storage  string
	LogLevel string
	LogFile  string
	Timeout  string
}

// Apply layers command line overrides over the loaded configuration and
// validates the result.
func (c *Config) Apply(o Overrides) error {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&c.APIURL, o.APIURL},
		{&c.DataDir, o.DataDir},
		{&c.Storage, o.Storage},
		{&c.LogLevel, o.LogLevel},
		{&c.LogFile, o.LogFile},
		{&c.Timeout, o.Timeout},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	return c.validate()
}

// TimeoutDuration returns the submission bound, zero when unset
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "eggplant")
	}
	return ".eggplant"
}
