// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// RetryDelay is the fixed pause between client-level retries. Tests
// override this to avoid real sleeps.
var RetryDelay = 3 * time.Second

// DoWithRetry executes a bodiless request and retries transport errors and
// 5xx responses up to maxRetries times, pausing RetryDelay between attempts.
//
// Any other status, 429 included, is returned on the first attempt: rate
// limiting is handled by the caller's backoff loop, not here. A negative
// maxRetries is treated as 0. If the context is cancelled during a wait the
// function returns ctx.Err(). After exhausting retries the last 5xx response
// (or the last transport error) is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		retryable := err != nil || resp.StatusCode >= http.StatusInternalServerError
		if !retryable || attempt >= maxRetries {
			return resp, err
		}

		if resp != nil {
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if err := Sleep(ctx, RetryDelay); err != nil {
			return nil, err
		}
	}
}

// MaxBackoff caps the delay returned by Backoff.
const MaxBackoff = 30 * time.Minute

// Backoff returns the exponential delay for a zero-based attempt:
// base, 2*base, 4*base, ... capped at MaxBackoff.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := min(base, MaxBackoff)
	for range max(attempt, 0) {
		if d >= MaxBackoff/2 {
			return MaxBackoff
		}
		d *= 2
	}
	return d
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
