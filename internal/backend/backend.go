// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend talks to the storage backend: it reads user activity and
// uploads finished papers.
package backend

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-crawler/internal/httputil"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

//go:embed thumbnail.webp
var embeddedThumbnail []byte

const (
	defaultUploadTimeout     = 60 * time.Second
	defaultActivitiesTimeout = 30 * time.Second
)

// Client is an authenticated backend client. Requests are never retried.
type Client struct {
	http      *http.Client
	cfg       types.BackendConfig
	thumbnail []byte
	log       *slog.Logger
}

// New builds a Client. The default thumbnail is read from
// cfg.DefaultThumbnail when that file exists, otherwise the embedded image
// is used.
func New(cfg types.BackendConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		http:      &http.Client{Transport: &bearerTransport{token: cfg.SecretKey}},
		cfg:       cfg,
		thumbnail: embeddedThumbnail,
		log:       log,
	}
	if cfg.DefaultThumbnail != "" {
		data, err := os.ReadFile(cfg.DefaultThumbnail)
		switch {
		case err == nil && len(data) > 0:
			c.thumbnail = data
		case errors.Is(err, fs.ErrNotExist):
			log.Warn("default thumbnail not found, using embedded image", "path", cfg.DefaultThumbnail)
		case err != nil:
			log.Warn("reading default thumbnail, using embedded image", "path", cfg.DefaultThumbnail, "error", err)
		}
	}
	log.Debug("backend client ready", "base_url", cfg.BaseURL, "token", maskToken(cfg.SecretKey))
	return c
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// FetchActivities returns the user activity records verbatim. Any failure
// is Absent.
func (c *Client) FetchActivities(ctx context.Context) types.Result[json.RawMessage] {
	timeout := c.cfg.ActivitiesTimeout
	if timeout <= 0 {
		timeout = defaultActivitiesTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.cfg.ActivitiesPath), nil)
	if err != nil {
		return types.Fatal[json.RawMessage](fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return types.Absent[json.RawMessage](fmt.Errorf("activities request: %w", err))
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return types.Absent[json.RawMessage](err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Absent[json.RawMessage](fmt.Errorf("reading activities: %w", err))
	}
	if !json.Valid(data) {
		return types.Absent[json.RawMessage](errors.New("activities response is not JSON"))
	}

	c.log.Info("fetched user activities",
		"count", countRecords(data), "elapsed", time.Since(start).Round(time.Millisecond))
	return types.Ok(json.RawMessage(data))
}

// countRecords returns the array length, or 1 for any other JSON value.
func countRecords(data []byte) int {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil {
		return len(items)
	}
	return 1
}

// Upload posts one paper with its PDF and, when present, its normalized
// enrichment. Only 200 and 201 count as success; anything else is returned
// as an error (a *httputil.StatusError for unexpected statuses).
func (c *Client) Upload(ctx context.Context, paper types.Paper, pdf []byte, up *types.NormalizedUpload) error {
	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fields, err := formFields(paper, up)
	if err != nil {
		return err
	}
	f := form{fields: fields}
	f.files = append(f.files, filePart{field: "pdf", filename: paper.ID + ".pdf", contentType: "application/pdf", data: pdf})
	if up != nil && len(up.ThumbnailBytes) > 0 {
		f.files = append(f.files, filePart{field: "thumbnail", filename: "thumbnail.png", contentType: "image/png", data: up.ThumbnailBytes})
	} else {
		f.files = append(f.files, filePart{field: "thumbnail", filename: "thumbnail.webp", contentType: "image/webp", data: c.thumbnail})
	}

	body, contentType, err := f.encode()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.PapersPath), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	c.log.Debug("uploading paper", "paper_id", paper.ID, "fields", f.names(), "pdf_bytes", len(pdf))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload request: %w", err)
	}
	if err := httputil.CheckStatus(resp, http.StatusOK, http.StatusCreated); err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.log.Info("uploaded paper", "paper_id", paper.ID,
		"status", resp.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// formFields flattens the paper and enrichment into ordered form fields.
// pdfUrl and empty values are left out; list values are JSON-encoded.
// Enrichment values replace paper values of the same name.
func formFields(paper types.Paper, up *types.NormalizedUpload) ([]field, error) {
	categories, err := encodeList(paper.Categories)
	if err != nil {
		return nil, fmt.Errorf("encoding categories: %w", err)
	}
	authors, err := encodeList(paper.Authors)
	if err != nil {
		return nil, fmt.Errorf("encoding authors: %w", err)
	}

	var fields fieldSet
	fields.set("paperId", paper.ID)
	fields.set("title", paper.Title)
	fields.set("categories", categories)
	fields.set("authors", authors)
	fields.set("summary", paper.Summary)
	fields.set("doi", paper.DOI)
	fields.set("url", paper.URL)
	fields.set("issuedAt", paper.IssuedAt)

	if up != nil {
		fields.set("summary", up.Summary)
		fields.set("translatedSummary", up.TranslatedSummary)
		fields.set("content", up.Content)
		fields.set("hashtags", up.Hashtags)
		fields.set("interestedUsers", up.InterestedUsers)
		fields.set("notifications", up.Notifications)
	}
	return fields, nil
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
