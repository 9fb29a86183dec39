// Package config loads application settings from the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	envPrefix         = "XLPLOT"
	configFileEnv     = "XLPLOT_CONFIG"
	defaultConfigFile = "config.yaml"
)

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Upload  UploadConfig  `yaml:"upload" envconfig:"UPLOAD"`
	Session SessionConfig `yaml:"session" envconfig:"SESSION"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

// UploadConfig limits the size, row count and arrival rate of uploads.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes" envconfig:"MAX_BYTES" default:"10485760" validate:"gt=0"`
	MaxRows  int   `yaml:"max_rows" envconfig:"MAX_ROWS" default:"10000" validate:"gt=0"`

	// Uploads accepted per second across all clients, with bursts up to
	// RateBurst.
	RatePerSecond float64 `yaml:"rate_per_second" envconfig:"RATE_PER_SECOND" default:"5" validate:"gt=0"`
	RateBurst     int     `yaml:"rate_burst" envconfig:"RATE_BURST" default:"10" validate:"gt=0"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl" envconfig:"TTL" default:"30m" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Load reads the environment (XLPLOT_*), then fills any setting not given in
// the environment from the YAML file named by XLPLOT_CONFIG, if it exists.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	path := os.Getenv(configFileEnv)
	if path == "" {
		path = defaultConfigFile
	}
	fileCfg, err := loadFromFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to load config from file: %w", err)
	default:
		cfg.merge(fileCfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// merge copies non-zero file settings whose environment variable is unset.
func (c *Config) merge(file *Config) {
	overlay(&c.Server.Port, file.Server.Port, "SERVER_PORT")
	overlay(&c.Server.ReadTimeout, file.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	overlay(&c.Server.WriteTimeout, file.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	overlay(&c.Server.IdleTimeout, file.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT")
	overlay(&c.Server.ShutdownTimeout, file.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")
	overlay(&c.Upload.MaxBytes, file.Upload.MaxBytes, "UPLOAD_MAX_BYTES")
	overlay(&c.Upload.MaxRows, file.Upload.MaxRows, "UPLOAD_MAX_ROWS")
	overlay(&c.Upload.RatePerSecond, file.Upload.RatePerSecond, "UPLOAD_RATE_PER_SECOND")
	overlay(&c.Upload.RateBurst, file.Upload.RateBurst, "UPLOAD_RATE_BURST")
	overlay(&c.Session.TTL, file.Session.TTL, "SESSION_TTL")
	overlay(&c.Logging.Level, file.Logging.Level, "LOGGING_LEVEL")
	overlay(&c.Logging.Format, file.Logging.Format, "LOGGING_FORMAT")
}

func overlay[T comparable](dst *T, src T, key string) {
	var zero T
	if src == zero {
		return
	}
	if _, set := os.LookupEnv(envPrefix + "_" + key); set {
		return
	}
	*dst = src
}

// Validate checks every setting against its bounds.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
