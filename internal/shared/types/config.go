package types

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	AggregatorName     string            `json:"aggregator_name" yaml:"aggregator_name" toml:"aggregator_name"`
	Profile            string            `json:"profile" yaml:"profile" toml:"profile"`
	Region             string            `json:"region" yaml:"region" toml:"region"`
	Accounts           []string          `json:"accounts" yaml:"accounts" toml:"accounts"`
	Bucket             string            `json:"bucket" yaml:"bucket" toml:"bucket"`
	KeyPrefix          string            `json:"key_prefix" yaml:"key_prefix" toml:"key_prefix"`
	Workers            int               `json:"workers" yaml:"workers" toml:"workers"`
	MaxFindingsPerRule int               `json:"max_findings_per_rule" yaml:"max_findings_per_rule" toml:"max_findings_per_rule"`
	CallTimeoutSeconds int               `json:"call_timeout_seconds" yaml:"call_timeout_seconds" toml:"call_timeout_seconds"`
	MaxAttempts        int               `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts"`
	MaxBackoffSeconds  int               `json:"max_backoff_seconds" yaml:"max_backoff_seconds" toml:"max_backoff_seconds"`
	PackReports        bool              `json:"pack_reports" yaml:"pack_reports" toml:"pack_reports"`
	ReportName         string            `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType         []string          `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir                string            `json:"dir" yaml:"dir" toml:"dir"`
	Schedule           string            `json:"schedule" yaml:"schedule" toml:"schedule"`
	PushgatewayURL     string            `json:"pushgateway_url" yaml:"pushgateway_url" toml:"pushgateway_url"`
	LogLevel           string            `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat          string            `json:"log_format" yaml:"log_format" toml:"log_format"`
	Attribution        AttributionConfig `json:"attribution" yaml:"attribution" toml:"attribution"`
}

// CategoryConfig maps a set of rule-name keywords to a compliance framework family.
type CategoryConfig struct {
	Family   string   `json:"family" yaml:"family" toml:"family"`
	Keywords []string `json:"keywords" yaml:"keywords" toml:"keywords"`
}

// AttributionConfig drives the rule-to-pack resolver.
type AttributionConfig struct {
	SuffixMarker      string            `json:"suffix_marker" yaml:"suffix_marker" toml:"suffix_marker"`
	Categories        []CategoryConfig  `json:"categories" yaml:"categories" toml:"categories"`
	FamilyPatterns    map[string]string `json:"family_patterns" yaml:"family_patterns" toml:"family_patterns"`
	BaselineFamily    string            `json:"baseline_family" yaml:"baseline_family" toml:"baseline_family"`
	MinGroupConsensus int               `json:"min_group_consensus" yaml:"min_group_consensus" toml:"min_group_consensus"`
	FirstPackFallback bool              `json:"first_pack_fallback" yaml:"first_pack_fallback" toml:"first_pack_fallback"`
}

// Supported report types for local exports.
var SupportedReportTypes = []string{"json", "csv", "pdf"}

// DefaultAttributionConfig returns the category chain observed in the
// organization's conformance packs. Order matters: the first matching
// category wins.
func DefaultAttributionConfig() AttributionConfig {
	return AttributionConfig{
		SuffixMarker: "-conformance-pack-",
		Categories: []CategoryConfig{
			{Family: "CIS", Keywords: []string{"iam-password", "root-account", "mfa"}},
			{Family: "Security-Pillar", Keywords: []string{"s3-bucket", "cloudtrail", "vpc"}},
			{Family: "NIST", Keywords: []string{"encryption", "kms", "logging", "api-gw"}},
		},
		FamilyPatterns: map[string]string{
			"CIS":             "CIS",
			"Security-Pillar": "Security-Pillar",
			"NIST":            "NIST",
			"APRA":            "APRA",
		},
		BaselineFamily:    "APRA",
		MinGroupConsensus: 2,
	}
}

// DefaultConfig returns the configuration used when no file or flag overrides a value.
func DefaultConfig() Config {
	return Config{
		Region:             "us-east-1",
		Workers:            8,
		CallTimeoutSeconds: 30,
		MaxAttempts:        5,
		MaxBackoffSeconds:  20,
		PackReports:        true,
		ReportName:         "compliance-snapshot",
		LogLevel:           "info",
		LogFormat:          "auto",
		Attribution:        DefaultAttributionConfig(),
	}
}

// CallTimeout returns the per-call timeout as a duration.
func (c Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// MaxBackoff returns the retryer's maximum backoff as a duration.
func (c Config) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffSeconds) * time.Second
}

// Validate checks the configuration before a run starts.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AggregatorName) == "" {
		return ErrMissingAggregator
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.MaxFindingsPerRule < 0 {
		return fmt.Errorf("%w: max_findings_per_rule must not be negative", ErrInvalidConfig)
	}
	if c.CallTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: call_timeout_seconds must be positive", ErrInvalidConfig)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max_attempts must be positive", ErrInvalidConfig)
	}
	for _, rt := range c.ReportType {
		if !isSupportedReportType(rt) {
			return fmt.Errorf("%w: unsupported report type %q", ErrInvalidConfig, rt)
		}
	}
	for _, cat := range c.Attribution.Categories {
		if cat.Family == "" || len(cat.Keywords) == 0 {
			return fmt.Errorf("%w: attribution categories need a family and at least one keyword", ErrInvalidConfig)
		}
	}
	return nil
}

func isSupportedReportType(rt string) bool {
	for _, s := range SupportedReportTypes {
		if strings.EqualFold(s, rt) {
			return true
		}
	}
	return false
}
