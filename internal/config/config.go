package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Front50 struct {
		Enabled   bool   `mapstructure:"enabled"`
		BaseURL   string `mapstructure:"base_url"`
		TimeoutMs int    `mapstructure:"timeout_ms"`
	} `mapstructure:"front50"`
	Fiat struct {
		Enabled   bool   `mapstructure:"enabled"`
		BaseURL   string `mapstructure:"base_url"`
		TimeoutMs int    `mapstructure:"timeout_ms"`
	} `mapstructure:"fiat"`
	Tasks struct {
		MonitorStore struct {
			SuccessThreshold int `mapstructure:"success_threshold"`
			GracePeriodMs    int `mapstructure:"grace_period_ms"`
		} `mapstructure:"monitor_store"`
	} `mapstructure:"tasks"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// GracePeriod returns the monitor's grace period as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Tasks.MonitorStore.GracePeriodMs) * time.Millisecond
}

// LoadConfig loads the configuration from a file and the environment. A
// missing config file is fine; defaults and environment variables apply.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("front50.enabled", true)
	viper.SetDefault("front50.base_url", "http://localhost:8080")
	viper.SetDefault("front50.timeout_ms", 10000)
	viper.SetDefault("fiat.enabled", true)
	viper.SetDefault("fiat.base_url", "http://localhost:7003")
	viper.SetDefault("fiat.timeout_ms", 10000)
	viper.SetDefault("tasks.monitor_store.success_threshold", 0)
	viper.SetDefault("tasks.monitor_store.grace_period_ms", 5000)
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
