package config

import (
	"errors"
	"fmt"
)

type MatchingConfig struct {
	CandidateLimit  int `mapstructure:"candidate_limit"`
	MaxScored       int `mapstructure:"max_scored"`
	NotifyThreshold int `mapstructure:"notify_threshold"`
}

func (config MatchingConfig) validate() error {
	var errs []error

	if config.CandidateLimit <= 0 {
		errs = append(errs, fmt.Errorf("candidate_limit must be positive"))
	}
	if config.MaxScored <= 0 {
		errs = append(errs, fmt.Errorf("max_scored must be positive"))
	}
	if config.NotifyThreshold < 0 || config.NotifyThreshold > 100 {
		errs = append(errs, fmt.Errorf("notify_threshold must be within [0, 100]"))
	}

	return errors.Join(errs...)
}

func (config MatchingConfig) bindEnvironmentVariables() error {
	return bindAll([2]string{"matching.notify_threshold", "MATCH_NOTIFY_THRESHOLD"})
}

// RetentionConfig controls pruning of postings that stopped showing up in
// ingestion cycles. Zero days disables pruning.
type RetentionConfig struct {
	PostingDays int `mapstructure:"posting_days"`
}

func (config RetentionConfig) validate() error {
	if config.PostingDays < 0 {
		return fmt.Errorf("posting_days must not be negative")
	}
	return nil
}

func (config RetentionConfig) bindEnvironmentVariables() error {
	return bindAll([2]string{"retention.posting_days", "POSTING_RETENTION_DAYS"})
}
