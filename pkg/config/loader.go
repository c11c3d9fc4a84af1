package config

import (
	"fmt"
	"strings"

	"github.com/nimburion/docstore/pkg/observability/logger"
	"github.com/spf13/viper"
)

// Loader defines the interface for loading configuration.
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper.
type ViperLoader struct {
	configFile string
	envPrefix  string
}

// NewViperLoader creates a loader. configFile may be empty; envPrefix is the
// prefix for environment variables (e.g. "DOCSTORE").
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// Load loads configuration with precedence: ENV > file > defaults.
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("store.url", defaults.Store.URL)
	v.SetDefault("store.database", defaults.Store.Database)
	v.SetDefault("store.connect_timeout", defaults.Store.ConnectTimeout)
	v.SetDefault("store.operation_timeout", defaults.Store.OperationTimeout)
	v.SetDefault("logger.level", defaults.Logger.Level)
	v.SetDefault("logger.format", defaults.Logger.Format)
	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	// Environment variables override file config through explicit bindings.
	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("store.url", l.prefixedEnv("STORE_URL"))
	v.BindEnv("store.database", l.prefixedEnv("STORE_DATABASE"))
	v.BindEnv("store.connect_timeout", l.prefixedEnv("STORE_CONNECT_TIMEOUT"))
	v.BindEnv("store.operation_timeout", l.prefixedEnv("STORE_OPERATION_TIMEOUT"))
	v.BindEnv("logger.level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("logger.format", l.prefixedEnv("LOG_FORMAT"))
	v.BindEnv("metrics.enabled", l.prefixedEnv("METRICS_ENABLED"))
}

func (l *ViperLoader) prefixedEnv(name string) string {
	if l.envPrefix == "" {
		return name
	}
	return strings.ToUpper(l.envPrefix) + "_" + name
}

// Validate checks that the loaded configuration is usable.
func (l *ViperLoader) Validate(cfg *Config) error {
	if cfg.Store.URL == "" {
		return fmt.Errorf("store.url is required")
	}
	if cfg.Store.Database == "" {
		return fmt.Errorf("store.database is required")
	}
	if cfg.Store.ConnectTimeout < 0 {
		return fmt.Errorf("store.connect_timeout must not be negative")
	}
	if cfg.Store.OperationTimeout < 0 {
		return fmt.Errorf("store.operation_timeout must not be negative")
	}
	if _, err := logger.ParseLogLevel(cfg.Logger.Level); err != nil {
		return err
	}
	if _, err := logger.ParseLogFormat(cfg.Logger.Format); err != nil {
		return err
	}
	return nil
}
