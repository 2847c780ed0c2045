// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl runs papers from the source index through download,
// review, summarization and upload, one paper at a time.
//
// Crawl is a one-shot run over the latest papers. Watch polls for new
// papers on an interval and uses a processed.Set so that a paper is
// uploaded at most once across polls.
package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pdiddy/arxiv-crawler/internal/httputil"
	"github.com/pdiddy/arxiv-crawler/internal/metrics"
	"github.com/pdiddy/arxiv-crawler/internal/processed"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// Crawler owns the pipeline collaborators and the pacing configuration.
type Crawler struct {
	deps  Deps
	cfg   types.Config
	out   io.Writer
	log   *slog.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Crawler. Status lines go to out; structured logs to log.
func New(deps Deps, cfg types.Config, out io.Writer, log *slog.Logger) *Crawler {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = slog.Default()
	}
	return &Crawler{deps: deps, cfg: cfg, out: out, log: log, sleep: httputil.Sleep}
}

// Item is one fetched entry. Err is set when the entry could not be
// turned into a Paper.
type Item struct {
	Paper types.Paper
	Err   error
}

// Tally counts the outcome of one batch.
type Tally struct {
	Succeeded int
	Failed    int
	// Skipped counts fetched papers that were already processed.
	Skipped int
	Elapsed time.Duration
}

// Total returns the number of papers the batch worked on.
func (t Tally) Total() int { return t.Succeeded + t.Failed }

// HasFailures reports whether any paper failed.
func (t Tally) HasFailures() bool { return t.Failed > 0 }

// Crawl fetches the latest papers and processes every one of them. It
// returns an error only when the fetch fails or ctx is cancelled;
// individual paper failures are counted in the Tally.
func (c *Crawler) Crawl(ctx context.Context) (Tally, error) {
	items, err := c.fetch(ctx, c.cfg.Source.LatestMaxResults)
	if err != nil {
		return Tally{}, err
	}
	return c.RunBatch(ctx, items, nil)
}

// Poll fetches the most recent papers, drops the ones in seen and
// processes the rest, recording each upload in seen. A panic anywhere in
// the batch is recovered and returned as an error carrying a stack trace.
func (c *Crawler) Poll(ctx context.Context, seen *processed.Set) (t Tally, err error) {
	if seen == nil {
		return Tally{}, errors.New("poll requires a processed set")
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("poll panicked: %v", r)
		}
	}()

	fmt.Fprintf(c.out, "[%s] polling for new papers (%d already processed)\n",
		time.Now().Format(time.DateTime), seen.Len())

	items, err := c.fetch(ctx, c.cfg.Source.ScheduledMaxResults)
	if err != nil {
		return Tally{}, err
	}

	var fresh []Item
	for _, it := range items {
		if it.Err == nil && seen.Contains(it.Paper.ID) {
			t.Skipped++
			continue
		}
		fresh = append(fresh, it)
	}
	if len(fresh) == 0 {
		fmt.Fprintf(c.out, "No new papers (all %d already processed).\n", len(items))
		return t, nil
	}

	batch, err := c.RunBatch(ctx, fresh, seen)
	batch.Skipped = t.Skipped
	return batch, err
}

// Watch polls until ctx is cancelled. Batch errors are logged with their
// stack trace and polling resumes after the poll interval.
func (c *Crawler) Watch(ctx context.Context, seen *processed.Set) error {
	c.log.Info("watching for new papers", "interval", c.cfg.Crawl.PollInterval,
		"batch_size", c.cfg.Source.ScheduledMaxResults, "processed", seen.Len())
	for {
		_, err := c.Poll(ctx, seen)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			fmt.Fprintf(c.out, "batch failed: %v\n", err)
			c.log.Error("batch failed", "error", err, "trace", fmt.Sprintf("%+v", err))
		}
		if err := c.sleep(ctx, c.cfg.Crawl.PollInterval); err != nil {
			return err
		}
	}
}

// fetch runs the source query and converts the results into Items.
func (c *Crawler) fetch(ctx context.Context, maxResults int) ([]Item, error) {
	results, err := c.deps.Source.Fetch(ctx, maxResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(err, "fetching papers")
	}
	items := make([]Item, 0, results.Len())
	for p, err := range results.All() {
		items = append(items, Item{Paper: p, Err: err})
	}
	return items, nil
}

// RunBatch processes items in order, pausing cfg.Crawl.RequestDelay after
// every item except the last. When seen is non-nil each uploaded paper is
// added to it. Only cancellation stops the batch early.
func (c *Crawler) RunBatch(ctx context.Context, items []Item, seen *processed.Set) (Tally, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := c.log.With("run_id", runID)

	var t Tally
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No papers to process.")
		return t, nil
	}
	fmt.Fprintf(c.out, "\nFound %d papers\n\n", len(items))
	log.Info("batch started", "papers", len(items))

	for i, it := range items {
		state, err := c.runItem(ctx, log, it, i+1, len(items))
		if ctx.Err() != nil {
			t.Elapsed = time.Since(start)
			log.Warn("batch interrupted", "completed", t.Total(), "papers", len(items))
			return t, ctx.Err()
		}

		if state == Uploaded {
			t.Succeeded++
			if seen != nil {
				if err := seen.Add(it.Paper.ID); err != nil {
					log.Warn("could not record processed paper", "paper_id", it.Paper.ID, "error", err)
				}
			}
		} else {
			t.Failed++
			log.Debug("paper not uploaded", "state", state, "error", err)
		}
		log.Info("progress", "done", t.Total(), "papers", len(items),
			"succeeded", t.Succeeded, "failed", t.Failed)

		if i < len(items)-1 {
			if err := c.sleep(ctx, c.cfg.Crawl.RequestDelay); err != nil {
				t.Elapsed = time.Since(start)
				return t, err
			}
		}
	}

	t.Elapsed = time.Since(start)
	metrics.RecordBatch(t.Elapsed)
	avg := t.Elapsed / time.Duration(len(items))
	fmt.Fprintf(c.out, "Batch summary: %d succeeded, %d failed (total: %d) in %s, %s per paper\n",
		t.Succeeded, t.Failed, t.Total(), t.Elapsed.Round(time.Millisecond), avg.Round(time.Millisecond))
	log.Info("batch finished", "succeeded", t.Succeeded, "failed", t.Failed,
		"total", t.Total(), "elapsed", t.Elapsed, "avg_per_paper", avg)
	return t, nil
}

// runItem processes one item; an entry that never became a Paper fails
// without touching the network.
func (c *Crawler) runItem(ctx context.Context, log *slog.Logger, it Item, index, total int) (State, error) {
	if it.Err != nil {
		fmt.Fprintf(c.out, "[%d/%d] failed: %v\n\n", index, total, it.Err)
		metrics.RecordPaper(Failed.String())
		log.Warn("skipping entry", "error", it.Err)
		return Failed, it.Err
	}
	return c.process(ctx, log, it.Paper, index, total)
}
