package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all application configuration.
type Config struct {
	API   APIConfig   `yaml:"api" mapstructure:"api"`
	Store StoreConfig `yaml:"store" mapstructure:"store"`
	TUI   TUIConfig   `yaml:"tui" mapstructure:"tui"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
	Demo  DemoConfig  `yaml:"demo" mapstructure:"demo"`
}

// APIConfig configures the remote health API client.
type APIConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateBurst    int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// Timeout returns the request timeout. Zero means requests never time out.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// StoreConfig configures intent behavior in the client store.
type StoreConfig struct {
	RollbackOutreach bool `yaml:"rollback_outreach" mapstructure:"rollback_outreach"`
}

// TUIConfig configures the dashboard.
type TUIConfig struct {
	RefreshSecs int `yaml:"refresh_secs" mapstructure:"refresh_secs"`
}

// RefreshInterval returns the auto-refresh period, zero when disabled.
func (c TUIConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

// DemoConfig configures the bundled demo backend.
type DemoConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []error
	switch mode {
	case "client":
		if c.API.BaseURL == "" {
			errs = append(errs, errors.New("api.base_url is required"))
		} else if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
			errs = append(errs, fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL))
		}
		if c.API.TimeoutSecs < 0 {
			errs = append(errs, errors.New("api.timeout_secs must be >= 0"))
		}
		if c.API.RateLimitRPS < 0 {
			errs = append(errs, errors.New("api.rate_limit_rps must be >= 0"))
		}
		if c.API.RateLimitRPS > 0 && c.API.RateBurst < 1 {
			errs = append(errs, errors.New("api.rate_burst must be >= 1 when rate limiting"))
		}
		if c.TUI.RefreshSecs < 0 {
			errs = append(errs, errors.New("tui.refresh_secs must be >= 0"))
		}
	case "demo":
		if c.Demo.Port <= 0 || c.Demo.Port > 65535 {
			errs = append(errs, errors.New("demo.port must be > 0 and <= 65535"))
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
	if err := errors.Join(errs...); err != nil {
		return eris.Wrapf(err, "config: invalid %s configuration", mode)
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEALTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout_secs", 0)
	v.SetDefault("api.rate_limit_rps", 0)
	v.SetDefault("api.rate_burst", 5)
	v.SetDefault("store.rollback_outreach", false)
	v.SetDefault("tui.refresh_secs", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("demo.port", 8000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger. When File is set, log output goes
// there instead of stderr.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
