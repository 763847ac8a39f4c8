package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ScraperConfig struct {
	UserAgent          string        `mapstructure:"user_agent"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	SessionMaxAge      time.Duration `mapstructure:"session_max_age"`
	MaxRetries         int           `mapstructure:"max_retries"`
	MinDelay           time.Duration `mapstructure:"min_delay"`
	MaxDelay           time.Duration `mapstructure:"max_delay"`
	MaxRequestsPerHost float64       `mapstructure:"max_requests_per_host"`
	FlareSolverrURL    string        `mapstructure:"flaresolverr_url"`
	ProxyTimeout       time.Duration `mapstructure:"proxy_timeout"`
}

func (config ScraperConfig) validate() error {
	if config.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if config.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive")
	}
	if config.MinDelay > config.MaxDelay {
		return fmt.Errorf("min_delay must not exceed max_delay")
	}
	return nil
}

func (config ScraperConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("scraper.flaresolverr_url", "FLARESOLVERR_URL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("scraper.user_agent", "SCRAPER_USER_AGENT"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
