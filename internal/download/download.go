// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches paper PDFs into memory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/arxiv-crawler/internal/httputil"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

const defaultTimeout = 30 * time.Second

// ErrEmptyBody is reported when the server answers 2xx with no content.
var ErrEmptyBody = errors.New("empty response body")

// Downloader makes one attempt per URL. It never retries.
type Downloader struct {
	client *http.Client
	cfg    types.DownloadConfig
}

// New returns a Downloader whose requests are bounded by cfg.Timeout.
func New(cfg types.DownloadConfig) *Downloader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Downloader{client: &http.Client{Timeout: timeout}, cfg: cfg}
}

// Download fetches url. Network failures and non-2xx statuses are Absent;
// a URL that cannot form a request is Fatal.
func (d *Downloader) Download(ctx context.Context, url string) types.Result[[]byte] {
	if url == "" {
		return types.Fatal[[]byte](errors.New("empty PDF URL"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.Fatal[[]byte](fmt.Errorf("creating request: %w", err))
	}
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := d.client.Do(req)
	if err != nil {
		return types.Absent[[]byte](fmt.Errorf("HTTP request: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.Absent[[]byte](httputil.CheckStatus(resp))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Absent[[]byte](fmt.Errorf("reading body: %w", err))
	}
	if len(data) == 0 {
		return types.Absent[[]byte](ErrEmptyBody)
	}
	return types.Ok(data)
}
