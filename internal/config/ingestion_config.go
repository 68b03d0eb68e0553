package config

import (
	"errors"
	"fmt"
	"time"
)

type IngestionConfig struct {
	Interval             time.Duration `mapstructure:"interval"`
	InitialDelay         time.Duration `mapstructure:"initial_delay"`
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"`
	SmallFetchTimeout    time.Duration `mapstructure:"small_fetch_timeout"`
	UserAgent            string        `mapstructure:"user_agent"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
	EnabledSources       []string      `mapstructure:"enabled_sources"`
	SearchKeywords       []string      `mapstructure:"search_keywords"`
	DescriptionLimit     int           `mapstructure:"description_limit"`
	RemotiveLimit        int           `mapstructure:"remotive_limit"`
	HNMaxComments        int           `mapstructure:"hn_max_comments"`
}

func (config IngestionConfig) validate() error {
	var errs []error

	if config.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive"))
	}
	if config.InitialDelay < 0 {
		errs = append(errs, fmt.Errorf("initial_delay must not be negative"))
	}
	if config.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive"))
	}
	if config.DescriptionLimit <= 0 {
		errs = append(errs, fmt.Errorf("description_limit must be positive"))
	}

	return errors.Join(errs...)
}

func (config IngestionConfig) bindEnvironmentVariables() error {
	return bindAll(
		[2]string{"ingestion.interval", "INGESTION_INTERVAL"},
		[2]string{"ingestion.enabled_sources", "INGESTION_SOURCES"},
		[2]string{"ingestion.user_agent", "INGESTION_USER_AGENT"},
	)
}
