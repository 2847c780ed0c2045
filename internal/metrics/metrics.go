// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics provides Prometheus metrics for the crawler.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arxiv_crawler"

var (
	// PapersTotal counts papers that reached a terminal state.
	PapersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_total",
			Help:      "Papers processed, by final state",
		},
		[]string{"state"},
	)

	// StagesTotal counts stage outcomes (download, review, activities, summarize, upload).
	StagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_total",
			Help:      "Pipeline stage outcomes",
		},
		[]string{"stage", "outcome"},
	)

	// FetchRetriesTotal counts backoff retries against the source index.
	FetchRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Source index retries, by reason",
		},
		[]string{"reason"},
	)

	// BatchDuration measures how long a whole batch takes.
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of crawl batches in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
		},
	)

	// ProcessedPapers tracks the size of the idempotency set.
	ProcessedPapers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processed_papers",
			Help:      "Number of paper ids in the processed set",
		},
	)

	// ReviewTokensTotal counts reviewer tokens by direction.
	ReviewTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_tokens_total",
			Help:      "Tokens consumed by the reviewer model",
		},
		[]string{"model", "direction"},
	)
)

// RecordPaper records the final state of one paper.
func RecordPaper(state string) {
	PapersTotal.WithLabelValues(state).Inc()
}

// RecordStage records one stage outcome.
func RecordStage(stage, outcome string) {
	StagesTotal.WithLabelValues(stage, outcome).Inc()
}

// RecordFetchRetry records a backoff retry against the source index.
func RecordFetchRetry(reason string) {
	FetchRetriesTotal.WithLabelValues(reason).Inc()
}

// RecordBatch records a finished batch.
func RecordBatch(d time.Duration) {
	BatchDuration.Observe(d.Seconds())
}

// RecordReviewTokens records reviewer token usage.
func RecordReviewTokens(model string, prompt, completion int) {
	ReviewTokensTotal.WithLabelValues(model, "prompt").Add(float64(prompt))
	ReviewTokensTotal.WithLabelValues(model, "completion").Add(float64(completion))
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr
// disables the listener.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
