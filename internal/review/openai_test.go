// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/arxiv-crawler/internal/httputil"
)

func TestOpenAIBackendComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":12,"completion_tokens":3}}`))
	}))
	defer srv.Close()

	b := &OpenAIBackend{APIKey: "sk-test", Model: "gpt-4o-mini", Endpoint: srv.URL}
	c, err := b.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.Content != "hello" {
		t.Errorf("Content = %q", c.Content)
	}
	if c.Usage != (Usage{PromptTokens: 12, CompletionTokens: 3}) {
		t.Errorf("Usage = %+v", c.Usage)
	}
	if got.Model != "gpt-4o-mini" || len(got.Messages) != 1 || got.Messages[0].Content != "hi" {
		t.Errorf("request = %+v", got)
	}
}

func TestOpenAIBackendDefaultEndpoint(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"choices":[{"message":{"content":"x"}}]}`))
	}))
	defer srv.Close()

	orig := openAIChatURL
	openAIChatURL = srv.URL
	defer func() { openAIChatURL = orig }()

	b := &OpenAIBackend{APIKey: "k", Model: "m"}
	if _, err := b.Complete(context.Background(), nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !called {
		t.Error("default endpoint not used")
	}
}

func TestOpenAIBackendErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"rate limited", http.StatusTooManyRequests, `{}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"malformed", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			b := &OpenAIBackend{APIKey: "k", Model: "m", Endpoint: srv.URL}
			_, err := b.Complete(context.Background(), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.status == http.StatusTooManyRequests && !httputil.IsRateLimited(err) {
				t.Errorf("err = %v, want rate limited", err)
			}
		})
	}
}
