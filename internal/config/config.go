// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the crawler's types.Config from viper and checks it
// once at startup.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/arxiv-crawler/internal/secrets"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "ARXIV_CRAWLER"

// summarizePath is appended to the legacy AI server URL.
const summarizePath = "/api/summarize-paper"

// Part selects which sections Validate checks. Subcommands that only touch
// the source index do not need backend credentials.
type Part uint

const (
	Source Part = 1 << iota
	Backend
	Summarizer
	Review
	Crawl

	All = Source | Backend | Summarizer | Review | Crawl
)

var defaults = map[string]any{
	"source.base_url":              "https://export.arxiv.org/api/query",
	"source.query":                 "cat:cs.AI OR cat:cs.LG OR cat:cs.CV",
	"source.latest_max_results":    100,
	"source.scheduled_max_results": 10,
	"source.sort_by":               "submittedDate",
	"source.sort_order":            "descending",
	"source.page_size":             100,
	"source.page_delay":            3 * time.Second,
	"source.client_retries":        3,
	"source.max_retries":           5,
	"source.initial_delay":         3 * time.Second,
	"source.timeout":               30 * time.Second,
	"source.user_agent":            "arxiv-crawler/0.1",

	"download.timeout":         30 * time.Second,
	"download.user_agent":      "arxiv-crawler/0.1",
	"download.max_text_length": 100000,

	"review.enabled":     true,
	"review.model":       "gpt-4o-mini",
	"review.api_key":     "",
	"review.endpoint":    "",
	"review.timeout":     120 * time.Second,
	"review.reflections": 1,
	"review.prompts_dir": "",

	"summarizer.url":        "",
	"summarizer.server_url": "",
	"summarizer.timeout":    120 * time.Second,

	"backend.base_url":           "http://localhost:8000",
	"backend.secret_key":         "",
	"backend.activities_path":    "/api/crawler/users/activities",
	"backend.papers_path":        "/api/crawler/papers",
	"backend.timeout":            60 * time.Second,
	"backend.activities_timeout": 30 * time.Second,
	"backend.default_thumbnail":  "",

	"crawl.request_delay":  1 * time.Second,
	"crawl.poll_interval":  60 * time.Second,
	"crawl.processed_file": "processed_papers.json",
}

// legacyEnv maps config keys to the unprefixed variable names used by
// earlier deployments.
var legacyEnv = map[string]string{
	"backend.secret_key":           "CRAWLER_SECRET_KEY",
	"backend.base_url":             "BACKEND_SERVER_URL",
	"backend.timeout":              "BACKEND_TIMEOUT",
	"summarizer.server_url":        "AI_SERVER_URL",
	"summarizer.timeout":           "AI_SERVER_TIMEOUT",
	"review.api_key":               "OPENAI_API_KEY",
	"review.model":                 "REVIEWER_MODEL",
	"review.reflections":           "REVIEWER_REFLECTION",
	"source.query":                 "ARXIV_QUERY",
	"source.latest_max_results":    "MAX_RESULTS_LATEST",
	"source.scheduled_max_results": "MAX_RESULTS_SCHEDULED",
	"source.max_retries":           "ARXIV_MAX_RETRIES",
	"source.initial_delay":         "ARXIV_INITIAL_DELAY",
	"source.page_delay":            "ARXIV_CLIENT_DELAY",
	"download.timeout":             "PDF_DOWNLOAD_TIMEOUT",
	"download.max_text_length":     "MAX_PDF_TEXT_LENGTH",
	"crawl.request_delay":          "REQUEST_DELAY",
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		// BindEnv only errors when no key is given.
		_ = v.BindEnv(key, prefixed, legacy)
	}
}

// ApplySecrets seeds credential defaults from the .secrets/ directory.
// Values set in the config file or environment take precedence.
func ApplySecrets(v *viper.Viper, s map[string]string) {
	if key, ok := s[secrets.CrawlerSecretKey]; ok {
		v.SetDefault("backend.secret_key", key)
	}
	if key, ok := s[secrets.OpenAIAPIKey]; ok {
		v.SetDefault("review.api_key", key)
	}
}

// Build decodes v into a Config without validating it.
func Build(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationHook)); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.Summarizer.URL == "" {
		if base := strings.TrimRight(v.GetString("summarizer.server_url"), "/"); base != "" {
			cfg.Summarizer.URL = base + summarizePath
		}
	}
	return cfg, nil
}

// durationHook decodes durations from Go syntax ("1m30s") or from bare
// seconds ("1.5", 3), the form used by the legacy environment variables.
func durationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) || from == to {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		v = strings.TrimSpace(v)
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return seconds(secs), nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", v)
		}
		return d, nil
	case int:
		return seconds(float64(v)), nil
	case int64:
		return seconds(float64(v)), nil
	case float64:
		return seconds(v), nil
	}
	return data, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Load builds the Config, applies overrides in order, and validates the
// selected parts.
func Load(v *viper.Viper, parts Part, overrides ...func(*types.Config)) (types.Config, error) {
	cfg, err := Build(v)
	if err != nil {
		return types.Config{}, err
	}
	for _, o := range overrides {
		if o != nil {
			o(&cfg)
		}
	}
	if err := Validate(cfg, parts); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// ValidationError lists every violated configuration rule.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid configuration:\n" + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks cfg and returns a *ValidationError joining every problem
// found, or nil.
func Validate(cfg types.Config, parts Part) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if parts&Source != 0 {
		s := cfg.Source
		if strings.TrimSpace(s.Query) == "" {
			add("source.query is required")
		}
		if err := checkURL(s.BaseURL); err != nil {
			add("source.base_url: %v", err)
		}
		if s.LatestMaxResults <= 0 {
			add("source.latest_max_results must be positive, got %d", s.LatestMaxResults)
		}
		if s.ScheduledMaxResults <= 0 {
			add("source.scheduled_max_results must be positive, got %d", s.ScheduledMaxResults)
		}
		if s.PageSize <= 0 {
			add("source.page_size must be positive, got %d", s.PageSize)
		}
		if s.MaxRetries < 0 {
			add("source.max_retries must not be negative, got %d", s.MaxRetries)
		}
		if s.SortOrder != "ascending" && s.SortOrder != "descending" {
			add("source.sort_order must be ascending or descending, got %q", s.SortOrder)
		}
	}

	if parts&Backend != 0 {
		b := cfg.Backend
		if b.SecretKey == "" {
			add("backend.secret_key is required (CRAWLER_SECRET_KEY or .secrets/%s)", secrets.CrawlerSecretKey)
		}
		if err := checkURL(b.BaseURL); err != nil {
			add("backend.base_url: %v", err)
		}
	}

	if parts&Summarizer != 0 {
		if err := checkURL(cfg.Summarizer.URL); err != nil {
			add("summarizer.url: %v (or set AI_SERVER_URL)", err)
		}
	}

	if parts&Review != 0 && cfg.Review.Enabled {
		if cfg.Review.APIKey == "" {
			add("review.api_key is required when review is enabled (OPENAI_API_KEY or .secrets/%s)", secrets.OpenAIAPIKey)
		}
		if cfg.Review.Reflections < 0 {
			add("review.reflections must not be negative, got %d", cfg.Review.Reflections)
		}
	}

	if parts&Crawl != 0 {
		if cfg.Crawl.ProcessedFile == "" {
			add("crawl.processed_file is required")
		}
		if cfg.Crawl.RequestDelay < 0 {
			add("crawl.request_delay must not be negative")
		}
		if cfg.Crawl.PollInterval <= 0 {
			add("crawl.poll_interval must be positive")
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Err: errors.Join(errs...)}
}

func checkURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
