// Package config loads the settings shared by the CLI and the preview server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (FORMRT_SERVER_ADDR).
const EnvPrefix = "FORMRT"

// Config holds application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Forms   FormsConfig   `mapstructure:"forms"`
	Render  RenderConfig  `mapstructure:"render"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds preview server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"`
}

// FormsConfig controls where definitions come from and how they are built.
type FormsConfig struct {
	Dir                 string `mapstructure:"dir"`
	Watch               bool   `mapstructure:"watch"`
	DefaultMinOccur     int    `mapstructure:"default_min_occur"`
	DefaultInitialOccur int    `mapstructure:"default_initial_occur"`
}

// RenderConfig holds HTML renderer settings.
type RenderConfig struct {
	TemplatesDir string `mapstructure:"templates_dir"`
	Lang         string `mapstructure:"lang"`
}

// LoggingConfig selects the log level and output format (console or json).
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from path (optional) and the environment. An empty
// path returns the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.mode", "release")
	v.SetDefault("forms.dir", "forms")
	v.SetDefault("forms.watch", true)
	v.SetDefault("forms.default_min_occur", 0)
	v.SetDefault("forms.default_initial_occur", 1)
	v.SetDefault("render.templates_dir", "")
	v.SetDefault("render.lang", "en")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate rejects settings the runtime cannot honour.
func (c *Config) Validate() error {
	var errs []error
	if c.Forms.DefaultMinOccur < 0 {
		errs = append(errs, fmt.Errorf("forms.default_min_occur must not be negative, got %d", c.Forms.DefaultMinOccur))
	}
	if c.Forms.DefaultInitialOccur < 0 {
		errs = append(errs, fmt.Errorf("forms.default_initial_occur must not be negative, got %d", c.Forms.DefaultInitialOccur))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
