// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "arxiv-crawler/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourceConfig holds settings for querying the arXiv export API.
type SourceConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the query endpoint (default https://export.arxiv.org/api/query).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Query is the search_query expression, e.g. "cat:cs.AI OR cat:cs.LG".
	Query string `json:"query" yaml:"query" mapstructure:"query"`

	// LatestMaxResults caps a one-shot crawl (default 100).
	LatestMaxResults int `json:"latest_max_results" yaml:"latest_max_results" mapstructure:"latest_max_results"`

	// ScheduledMaxResults caps each polling batch (default 10).
	ScheduledMaxResults int `json:"scheduled_max_results" yaml:"scheduled_max_results" mapstructure:"scheduled_max_results"`

	// SortBy is the arXiv sort field (default submittedDate).
	SortBy string `json:"sort_by" yaml:"sort_by" mapstructure:"sort_by"`

	// SortOrder is ascending or descending (default descending).
	SortOrder string `json:"sort_order" yaml:"sort_order" mapstructure:"sort_order"`

	// PageSize is the number of entries requested per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// PageDelay is the minimum spacing between page requests (default 3s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay" mapstructure:"page_delay"`

	// ClientRetries is the per-page retry count for transport errors and
	// 5xx responses (default 3).
	ClientRetries int `json:"client_retries" yaml:"client_retries" mapstructure:"client_retries"`

	// MaxRetries bounds the fetch-level backoff loop (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// InitialDelay is the backoff base; retry k waits InitialDelay*2^(k-1) (default 3s).
	InitialDelay time.Duration `json:"initial_delay" yaml:"initial_delay" mapstructure:"initial_delay"`
}

// DownloadConfig holds settings for PDF download and text extraction.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxTextLength caps the extracted text handed to the reviewer (default 100000).
	MaxTextLength int `json:"max_text_length" yaml:"max_text_length" mapstructure:"max_text_length"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Endpoint is the chat completions URL.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Timeout bounds a single chat completion request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ReviewConfig holds settings for the automated review gate.
type ReviewConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// Enabled turns the gate on. A disabled gate lets every paper through.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Reflections is the number of self-revision rounds after the initial review (default 1).
	Reflections int `json:"reflections" yaml:"reflections" mapstructure:"reflections"`

	// PromptsDir optionally overrides the embedded prompt templates.
	PromptsDir string `json:"prompts_dir,omitempty" yaml:"prompts_dir,omitempty" mapstructure:"prompts_dir"`
}

// SummarizerConfig holds settings for the AI summarization service.
type SummarizerConfig struct {
	// URL is the summarize endpoint.
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// Timeout bounds the single summarize request (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// BackendConfig holds settings for the storage backend.
type BackendConfig struct {
	// BaseURL is the backend server root, e.g. http://localhost:8000.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// SecretKey is sent as a bearer token on every request.
	SecretKey string `json:"-" yaml:"-" mapstructure:"secret_key"`

	// ActivitiesPath is the user activity endpoint path.
	ActivitiesPath string `json:"activities_path" yaml:"activities_path" mapstructure:"activities_path"`

	// PapersPath is the upload endpoint path.
	PapersPath string `json:"papers_path" yaml:"papers_path" mapstructure:"papers_path"`

	// Timeout bounds the upload request (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// ActivitiesTimeout bounds the activity request (default 30s).
	ActivitiesTimeout time.Duration `json:"activities_timeout" yaml:"activities_timeout" mapstructure:"activities_timeout"`

	// DefaultThumbnail is a WebP file sent when the summarizer supplied none.
	DefaultThumbnail string `json:"default_thumbnail" yaml:"default_thumbnail" mapstructure:"default_thumbnail"`
}

// CrawlConfig holds settings for the batch and polling loops.
type CrawlConfig struct {
	// RequestDelay is the pause after every paper except the last (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// PollInterval is the pause between polling batches (default 60s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"`

	// ProcessedFile is the idempotency set location (default processed_papers.json).
	ProcessedFile string `json:"processed_file" yaml:"processed_file" mapstructure:"processed_file"`
}

// Config groups all stage configurations. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	Source     SourceConfig     `json:"source" yaml:"source" mapstructure:"source"`
	Download   DownloadConfig   `json:"download" yaml:"download" mapstructure:"download"`
	Review     ReviewConfig     `json:"review" yaml:"review" mapstructure:"review"`
	Summarizer SummarizerConfig `json:"summarizer" yaml:"summarizer" mapstructure:"summarizer"`
	Backend    BackendConfig    `json:"backend" yaml:"backend" mapstructure:"backend"`
	Crawl      CrawlConfig      `json:"crawl" yaml:"crawl" mapstructure:"crawl"`
}
