// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source queries the arXiv export API and turns its Atom feed into
// Paper records.
package source

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"golang.org/x/time/rate"

	"github.com/pdiddy/arxiv-crawler/internal/categories"
	"github.com/pdiddy/arxiv-crawler/internal/httputil"
	"github.com/pdiddy/arxiv-crawler/internal/metrics"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint used when the configuration
// leaves BaseURL empty.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	defaultPageSize = 100
	defaultTimeout  = 30 * time.Second
)

// Fetcher pages through the arXiv export API. Each page request is paced
// by a rate limiter and retried on transport errors and 5xx responses; the
// whole fetch is wrapped in an exponential backoff loop that also covers
// 429 responses.
type Fetcher struct {
	client  *http.Client
	cfg     types.SourceConfig
	mapper  *categories.Mapper
	limiter *rate.Limiter
	log     *slog.Logger

	// sleep waits between fetch attempts. Tests replace it to record delays.
	sleep func(context.Context, time.Duration) error
}

// NewFetcher builds a Fetcher for cfg. A nil mapper uses the embedded
// category table; a nil logger uses slog.Default.
func NewFetcher(cfg types.SourceConfig, mapper *categories.Mapper, log *slog.Logger) *Fetcher {
	if mapper == nil {
		mapper = categories.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.PageDelay > 0 {
		limit = rate.Every(cfg.PageDelay)
	}

	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		cfg:     cfg,
		mapper:  mapper,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
		sleep:   httputil.Sleep,
	}
}

// Fetch retrieves up to maxResults entries, newest first by default.
//
// Any failure, a 429 included, is retried up to cfg.MaxRetries times. The
// wait before retry k is InitialDelay*2^(k-1). When retries run out the
// last error is returned.
func (f *Fetcher) Fetch(ctx context.Context, maxResults int) (*Results, error) {
	if maxResults <= 0 {
		return nil, fmt.Errorf("max results must be positive, got %d", maxResults)
	}
	maxRetries := max(f.cfg.MaxRetries, 0)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		entries, err := f.fetchAll(ctx, maxResults)
		if err == nil {
			f.log.Info("fetched papers", "count", len(entries), "query", f.cfg.Query, "attempts", attempt+1)
			return &Results{entries: entries, mapper: f.mapper}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}

		reason := "error"
		if httputil.IsRateLimited(err) {
			reason = "rate_limited"
		}
		delay := httputil.Backoff(f.cfg.InitialDelay, attempt)
		metrics.RecordFetchRetry(reason)
		f.log.Warn("source fetch failed, backing off",
			"reason", reason, "attempt", attempt+1, "max_retries", maxRetries,
			"delay", delay, "error", err)

		if err := f.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("fetching papers (%d retries): %w", maxRetries, lastErr)
}

// fetchAll walks pages until maxResults entries are collected or the
// source runs dry.
func (f *Fetcher) fetchAll(ctx context.Context, maxResults int) ([]entry, error) {
	pageSize := f.cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var all []entry
	for start := 0; start < maxResults; {
		n := min(pageSize, maxResults-start)
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := f.fetchPage(ctx, start, n)
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", start, err)
		}
		all = append(all, page...)
		if len(page) < n {
			break
		}
		start += len(page)
	}
	return all, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, start, n int) ([]entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.pageURL(start, n), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.ClientRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := (&atom.Parser{}).Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	entries := make([]entry, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if e != nil {
			entries = append(entries, newEntry(e))
		}
	}
	f.log.Debug("fetched page", "start", start, "requested", n, "received", len(entries))
	return entries, nil
}

func (f *Fetcher) pageURL(start, n int) string {
	base := f.cfg.BaseURL
	if base == "" {
		base = arxivAPIBase
	}
	sortBy := f.cfg.SortBy
	if sortBy == "" {
		sortBy = "submittedDate"
	}
	sortOrder := f.cfg.SortOrder
	if sortOrder == "" {
		sortOrder = "descending"
	}

	q := url.Values{}
	q.Set("search_query", f.cfg.Query)
	q.Set("start", strconv.Itoa(start))
	q.Set("max_results", strconv.Itoa(n))
	q.Set("sortBy", sortBy)
	q.Set("sortOrder", sortOrder)
	return base + "?" + q.Encode()
}

// Results holds the entries of one successful fetch. Entries are converted
// to Paper records as they are iterated.
type Results struct {
	entries []entry
	mapper  *categories.Mapper
}

// Len returns the number of fetched entries.
func (r *Results) Len() int { return len(r.entries) }

// All yields each entry in fetch order as a Paper, or ErrNoPaperID for an
// entry without an id. The error is per item; iteration continues.
func (r *Results) All() iter.Seq2[types.Paper, error] {
	return func(yield func(types.Paper, error) bool) {
		for _, e := range r.entries {
			p, err := toPaper(e, r.mapper)
			if err != nil {
				err = fmt.Errorf("entry %q: %w", e.Title, err)
			}
			if !yield(p, err) {
				return
			}
		}
	}
}

// Papers collects every convertible entry and the conversion errors.
func (r *Results) Papers() ([]types.Paper, []error) {
	var papers []types.Paper
	var errs []error
	for p, err := range r.All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		papers = append(papers, p)
	}
	return papers, errs
}
