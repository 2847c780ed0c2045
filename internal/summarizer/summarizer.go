// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarizer calls the AI summarization service.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/pdiddy/arxiv-crawler/internal/httputil"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

const defaultTimeout = 120 * time.Second

// Client posts a PDF and the current user activity to the summarizer.
type Client struct {
	client *http.Client
	url    string
	log    *slog.Logger
}

// New returns a Client for cfg.
func New(cfg types.SummarizerConfig, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{client: &http.Client{Timeout: timeout}, url: cfg.URL, log: log}
}

// Summarize sends one request with the PDF as "file", the paper id as "id"
// and the activity records, JSON-encoded, as "activity". Timeouts, network
// failures, non-2xx statuses and malformed bodies are all Absent.
func (c *Client) Summarize(ctx context.Context, pdf []byte, activity json.RawMessage, paperID string) types.Result[types.Enrichment] {
	body, contentType, err := buildForm(pdf, activity, paperID)
	if err != nil {
		return types.Fatal[types.Enrichment](err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return types.Fatal[types.Enrichment](fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return types.Absent[types.Enrichment](fmt.Errorf("summarizer request: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.Absent[types.Enrichment](httputil.CheckStatus(resp))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Absent[types.Enrichment](fmt.Errorf("reading summarizer response: %w", err))
	}

	var e types.Enrichment
	if err := json.Unmarshal(data, &e); err != nil {
		return types.Absent[types.Enrichment](fmt.Errorf("parsing summarizer response: %w", err))
	}

	c.log.Info("summarizer responded",
		"paper_id", paperID, "elapsed", time.Since(start).Round(time.Millisecond), "bytes", len(data))
	return types.Ok(e)
}

func buildForm(pdf []byte, activity json.RawMessage, paperID string) (io.Reader, string, error) {
	if len(activity) == 0 {
		activity = json.RawMessage("[]")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, paperID+".pdf"))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, "", fmt.Errorf("writing file part: %w", err)
	}

	if err := mw.WriteField("id", paperID); err != nil {
		return nil, "", fmt.Errorf("writing id field: %w", err)
	}
	if err := mw.WriteField("activity", string(activity)); err != nil {
		return nil, "", fmt.Errorf("writing activity field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
