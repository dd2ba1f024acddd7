// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fair-model-service/internal/domain"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	Rate            string        `yaml:"rate"` // ulule/limiter format, e.g. "100-S"; empty disables
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
	File     string `yaml:"file"`     // optional rotated log file pattern base
}

// ModelConfig selects the model implementation. Read once at startup.
type ModelConfig struct {
	Module     string        `yaml:"module"`
	Type       string        `yaml:"type"`
	Parameters string        `yaml:"parameters"` // declarative parameters artifact
	Timeout    time.Duration `yaml:"timeout"`    // 0 = no cap
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Key      string        `yaml:"key"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Model    ModelConfig    `yaml:"model"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`

	Runtime RuntimeConfig `yaml:"-"`
}

// Environment variables understood by LoadConfig. MODULE_NAME and CLASS_NAME are
// what a packaged image sets.
const (
	EnvModule     = "MODULE_NAME"
	EnvType       = "CLASS_NAME"
	EnvParameters = "MODEL_PARAMETERS"
	EnvTimeout    = "MODEL_TIMEOUT"
	EnvPort       = "PORT"
	EnvRedisURL   = "REDIS_URL"
	EnvDatabase   = "DATABASE_URL"
	EnvLogLevel   = "LOG_LEVEL"
)

const (
	DefaultModule     = "model_execution_default"
	DefaultType       = "model_execution_logistic_regression"
	DefaultParameters = "model_parameters.json"
	DefaultPort       = 8000
)

// LoadConfig reads the optional YAML file, applies environment overrides and
// defaults, then validates. An empty path skips the file.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvModule, &cfg.Model.Module)
	str(EnvType, &cfg.Model.Type)
	str(EnvParameters, &cfg.Model.Parameters)
	str(EnvRedisURL, &cfg.Redis.URL)
	str(EnvDatabase, &cfg.Database.URL)
	str(EnvLogLevel, &cfg.Log.Level)

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port", domain.ErrConfiguration, EnvPort, v)
		}
		cfg.HTTP.Port = port
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", domain.ErrConfiguration, EnvTimeout, v, err)
		}
		cfg.Model.Timeout = d
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = DefaultPort
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Model.Module == "" && cfg.Model.Type == "" {
		cfg.Model.Module = DefaultModule
		cfg.Model.Type = DefaultType
	}
	if cfg.Model.Parameters == "" {
		cfg.Model.Parameters = DefaultParameters
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Redis.Key == "" {
		cfg.Redis.Key = "inference:last_job"
	}
}

// Validate reports the first invalid setting, wrapped in domain.ErrConfiguration.
func (c *Config) Validate() error {
	if c.Model.Module == "" || c.Model.Type == "" {
		return fmt.Errorf("%w: model.module and model.type must both be set", domain.ErrConfiguration)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: http.port %d out of range", domain.ErrConfiguration, c.HTTP.Port)
	}
	if c.Model.Timeout < 0 {
		return fmt.Errorf("%w: model.timeout must not be negative", domain.ErrConfiguration)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q (want json|console)", domain.ErrConfiguration, c.Log.Format)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
