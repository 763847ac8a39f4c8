package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type DBConfig struct {
	ConnectionString string         `mapstructure:"connection_string"`
	CacheTTLDays     int            `mapstructure:"cache_ttl_days"`
	PlatformTTLDays  map[string]int `mapstructure:"platform_ttl_days"`
	JobRetentionDays int            `mapstructure:"job_retention_days"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}
	if config.CacheTTLDays <= 0 {
		return fmt.Errorf("cache_ttl_days must be positive")
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING")
}
