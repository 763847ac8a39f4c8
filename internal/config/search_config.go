package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type SearchConfig struct {
	Keywords           string        `mapstructure:"keywords"`
	Location           string        `mapstructure:"location"`
	Platforms          []string      `mapstructure:"platforms"`
	MaxPages           int           `mapstructure:"max_pages"`
	EnglishOnly        bool          `mapstructure:"english_only"`
	DeepScrape         bool          `mapstructure:"deep_scrape"`
	RelevanceThreshold int           `mapstructure:"relevance_threshold"`
	MaxWorkers         int           `mapstructure:"max_workers"`
	SearchRadiusKm     float64       `mapstructure:"search_radius_km"`
	Interval           time.Duration `mapstructure:"interval"`
}

func (config SearchConfig) validate() error {

	var missingFields []string

	if config.Keywords == "" {
		missingFields = append(missingFields, "keywords")
	}

	if len(config.Platforms) == 0 {
		missingFields = append(missingFields, "platforms")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	if config.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1")
	}

	return nil
}

func (config SearchConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("search.keywords", "SEARCH_KEYWORDS"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("search.location", "SEARCH_LOCATION"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("search.interval", "SEARCH_INTERVAL"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
