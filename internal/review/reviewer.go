// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-crawler/internal/httputil"
	"github.com/pdiddy/arxiv-crawler/internal/metrics"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// ErrNoText is reported when there is no paper text to review.
var ErrNoText = errors.New("no paper text to review")

const (
	defaultTimeout  = 120 * time.Second
	maxCallRetries  = 2
	doneMarker      = "i am done"
	defaultReflects = 1
)

// backoffBase controls the base duration for retrying chat calls. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Reviewer is an LLM-backed Gate. For each paper it writes an initial
// review, revises it for a bounded number of reflection rounds, and merges
// all drafts into one meta-review.
type Reviewer struct {
	backend     ChatBackend
	prompts     *Prompts
	model       string
	reflections int
	log         *slog.Logger
}

// NewReviewer builds a Reviewer that talks to the configured chat endpoint.
func NewReviewer(cfg types.ReviewConfig, log *slog.Logger) (*Reviewer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("reviewer API key is not set")
	}
	prompts, err := LoadPrompts(cfg.PromptsDir)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	backend := &OpenAIBackend{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Endpoint: cfg.Endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
	return newReviewer(backend, prompts, cfg, log), nil
}

func newReviewer(backend ChatBackend, prompts *Prompts, cfg types.ReviewConfig, log *slog.Logger) *Reviewer {
	if log == nil {
		log = slog.Default()
	}
	reflections := cfg.Reflections
	if reflections < 0 {
		reflections = defaultReflects
	}
	return &Reviewer{
		backend:     backend,
		prompts:     prompts,
		model:       cfg.Model,
		reflections: reflections,
		log:         log,
	}
}

// Judge reviews text and returns the final review object. It is Absent
// when the text is empty or the initial review could not be obtained, and
// Fatal when ctx is cancelled.
func (r *Reviewer) Judge(ctx context.Context, text string) types.Result[Decision] {
	if strings.TrimSpace(text) == "" {
		return types.Absent[Decision](ErrNoText)
	}

	start := time.Now()
	var usage Usage
	defer func() { r.logUsage(usage, start) }()

	reviews, err := r.draft(ctx, text, &usage)
	if err != nil {
		if ctx.Err() != nil {
			return types.Fatal[Decision](ctx.Err())
		}
		return types.Absent[Decision](err)
	}

	final := reviews[len(reviews)-1]
	if len(reviews) > 1 {
		merged, err := r.ensemble(ctx, reviews, &usage)
		if err != nil {
			r.log.Warn("review ensembling failed, using last draft", "error", err)
		} else {
			final = merged
		}
	}
	return types.Ok(final)
}

// draft produces the initial review and its reflections. Only a failed
// initial review is an error; a failed reflection ends the rounds early.
func (r *Reviewer) draft(ctx context.Context, text string, usage *Usage) ([]Decision, error) {
	prompt, err := r.prompts.renderReview(text)
	if err != nil {
		return nil, err
	}
	messages := []Message{
		{Role: "system", Content: r.prompts.system},
		{Role: "user", Content: prompt},
	}

	reply, err := r.call(ctx, messages, usage)
	if err != nil {
		return nil, fmt.Errorf("initial review: %w", err)
	}
	first, err := parseReviewJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("initial review: %w", err)
	}
	reviews := []Decision{first}
	messages = append(messages, Message{Role: "assistant", Content: reply})
	r.log.Debug("initial review done", "decision", first.Summary())

	for round := 1; round <= r.reflections; round++ {
		prompt, err := r.prompts.renderReflection(round, r.reflections)
		if err != nil {
			return nil, err
		}
		messages = append(messages, Message{Role: "user", Content: prompt})

		reply, err := r.call(ctx, messages, usage)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.log.Warn("reflection failed", "round", round, "error", err)
			break
		}
		revised, err := parseReviewJSON(reply)
		if err != nil {
			r.log.Warn("reflection reply unparseable", "round", round, "error", err)
			break
		}
		reviews = append(reviews, revised)
		messages = append(messages, Message{Role: "assistant", Content: reply})
		r.log.Debug("reflection done", "round", round, "of", r.reflections, "decision", revised.Summary())

		if strings.Contains(strings.ToLower(reply), doneMarker) {
			r.log.Debug("reflection converged", "round", round)
			break
		}
	}
	return reviews, nil
}

// ensemble asks the model to merge reviews into a single meta-review.
func (r *Reviewer) ensemble(ctx context.Context, reviews []Decision, usage *Usage) (Decision, error) {
	system, err := r.prompts.renderEnsemble(len(reviews))
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for i, rv := range reviews {
		data, err := json.MarshalIndent(rv, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding review %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, "Review %d/%d:\n%s\n\n", i+1, len(reviews), data)
	}
	b.WriteString("\n\n")
	b.WriteString(r.prompts.guidelines)

	reply, err := r.call(ctx, []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: b.String()},
	}, usage)
	if err != nil {
		return nil, err
	}
	return parseReviewJSON(reply)
}

// call runs one completion with exponential backoff between attempts.
func (r *Reviewer) call(ctx context.Context, messages []Message, usage *Usage) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxCallRetries; attempt++ {
		if attempt > 0 {
			if err := httputil.Sleep(ctx, httputil.Backoff(backoffBase, attempt-1)); err != nil {
				return "", err
			}
		}
		c, err := r.backend.Complete(ctx, messages)
		if err == nil {
			usage.add(c.Usage)
			return c.Content, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxCallRetries, lastErr)
}

func (r *Reviewer) logUsage(u Usage, start time.Time) {
	if u.PromptTokens == 0 && u.CompletionTokens == 0 {
		return
	}
	metrics.RecordReviewTokens(r.model, u.PromptTokens, u.CompletionTokens)
	attrs := []any{
		"model", r.model,
		"prompt_tokens", u.PromptTokens,
		"completion_tokens", u.CompletionTokens,
		"elapsed", time.Since(start).Round(time.Millisecond),
	}
	if cost, ok := estimateCost(r.model, u); ok {
		attrs = append(attrs, "cost_usd", fmt.Sprintf("%.6f", cost))
	}
	r.log.Info("review usage", attrs...)
}
