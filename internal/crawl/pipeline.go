// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/pdiddy/arxiv-crawler/internal/metrics"
	"github.com/pdiddy/arxiv-crawler/internal/normalize"
	"github.com/pdiddy/arxiv-crawler/internal/review"
	"github.com/pdiddy/arxiv-crawler/internal/source"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// Reasons a paper ends in Failed.
var (
	ErrNoPDFURL        = errors.New("no PDF URL")
	ErrDownload        = errors.New("PDF download failed")
	ErrNoText          = errors.New("no text extracted from PDF")
	ErrReviewFailed    = errors.New("review produced no decision")
	ErrRejected        = errors.New("rejected by review")
	ErrUploadFailed    = errors.New("upload failed")
	ErrPaperProcessing = errors.New("paper processing panicked")
)

// Fetcher queries the source index.
type Fetcher interface {
	Fetch(ctx context.Context, maxResults int) (*source.Results, error)
}

// Downloader fetches a PDF.
type Downloader interface {
	Download(ctx context.Context, url string) types.Result[[]byte]
}

// TextExtractor turns PDF bytes into plain text of at most maxLength runes.
type TextExtractor interface {
	Extract(data []byte, maxLength int) string
}

// ActivitySource supplies the user activity records forwarded to the summarizer.
type ActivitySource interface {
	FetchActivities(ctx context.Context) types.Result[json.RawMessage]
}

// Summarizer enriches a paper from its PDF.
type Summarizer interface {
	Summarize(ctx context.Context, pdf []byte, activity json.RawMessage, paperID string) types.Result[types.Enrichment]
}

// Uploader stores a paper in the backend. up is nil when there is no
// enrichment.
type Uploader interface {
	Upload(ctx context.Context, paper types.Paper, pdf []byte, up *types.NormalizedUpload) error
}

// Deps are the pipeline collaborators. Gate may be nil, in which case every
// paper is accepted.
type Deps struct {
	Source     Fetcher
	Downloader Downloader
	Extractor  TextExtractor
	Gate       review.Gate
	Activities ActivitySource
	Summarizer Summarizer
	Uploader   Uploader
}

// Process runs one paper through the pipeline and returns its terminal
// state. The error explains a Failed state, or is the context error when
// ctx was cancelled mid-item.
func (c *Crawler) Process(ctx context.Context, paper types.Paper) (State, error) {
	return c.process(ctx, c.log, paper, 1, 1)
}

func (c *Crawler) process(ctx context.Context, log *slog.Logger, paper types.Paper, index, total int) (state State, err error) {
	start := time.Now()
	log = log.With("paper_id", paper.ID)
	fmt.Fprintf(c.out, "[%d/%d] processing: %q\n", index, total, shorten(paper.Title, 50))
	log.Info("processing paper", "index", index, "total", total, "title", paper.Title)

	defer func() {
		if r := recover(); r != nil {
			state, err = Failed, fmt.Errorf("%w: %v", ErrPaperProcessing, r)
			log.Error("paper processing panicked", "error", err, "stack", string(debug.Stack()))
		}
		elapsed := time.Since(start).Round(time.Millisecond)
		if !state.Terminal() {
			log.Warn("paper interrupted", "state", state, "elapsed", elapsed)
			return
		}
		metrics.RecordPaper(state.String())
		if state == Failed {
			fmt.Fprintf(c.out, "  failed: %v\n\n", err)
			log.Warn("paper failed", "error", err, "elapsed", elapsed)
			return
		}
		fmt.Fprintf(c.out, "  done (%s)\n\n", elapsed)
		log.Info("paper uploaded", "elapsed", elapsed)
	}()

	state = Fetched
	if paper.PDFURL == "" {
		return Failed, ErrNoPDFURL
	}

	// Fetched -> Downloaded
	pdf, ok := c.download(ctx, log, paper)
	if !ok {
		if ctx.Err() != nil {
			return state, ctx.Err()
		}
		return Failed, ErrDownload
	}
	state = Downloaded

	// Downloaded -> Reviewed | ReviewSkipped
	if state, err = c.review(ctx, log, pdf); err != nil {
		return state, err
	}

	// -> Summarized | SummarySkipped
	up, err := c.enrich(ctx, log, paper, pdf)
	if err != nil {
		return state, err
	}
	if up != nil {
		state = Summarized
	} else {
		state = SummarySkipped
	}

	// -> Uploaded | Failed
	fmt.Fprint(c.out, "  upload: ")
	if err := c.deps.Uploader.Upload(ctx, paper, pdf, up); err != nil {
		metrics.RecordStage("upload", "error")
		fmt.Fprintln(c.out, "failed")
		if ctx.Err() != nil {
			return state, ctx.Err()
		}
		return Failed, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	metrics.RecordStage("upload", "ok")
	fmt.Fprintln(c.out, "ok")
	return Uploaded, nil
}

func (c *Crawler) download(ctx context.Context, log *slog.Logger, paper types.Paper) ([]byte, bool) {
	fmt.Fprint(c.out, "  pdf: ")
	start := time.Now()
	res := c.deps.Downloader.Download(ctx, paper.PDFURL)
	metrics.RecordStage("download", res.Outcome.String())
	pdf, ok := res.Get()
	if !ok {
		fmt.Fprintln(c.out, "failed")
		log.Warn("PDF download failed", "url", paper.PDFURL, "outcome", res.Outcome, "error", res.Err)
		return nil, false
	}
	fmt.Fprintf(c.out, "ok (%d bytes)\n", len(pdf))
	log.Debug("PDF downloaded", "bytes", len(pdf), "elapsed", time.Since(start).Round(time.Millisecond))
	return pdf, true
}

// review applies the gate. A missing gate accepts; a configured gate that
// yields nothing rejects.
func (c *Crawler) review(ctx context.Context, log *slog.Logger, pdf []byte) (State, error) {
	if c.deps.Gate == nil {
		fmt.Fprintln(c.out, "  review: no reviewer configured, accepting")
		metrics.RecordStage("review", "skipped")
		return ReviewSkipped, nil
	}

	fmt.Fprint(c.out, "  review: ")
	text := c.deps.Extractor.Extract(pdf, c.cfg.Download.MaxTextLength)
	if text == "" {
		metrics.RecordStage("review", "no_text")
		fmt.Fprintln(c.out, "no text extracted")
		return Failed, ErrNoText
	}
	log.Debug("extracted text", "chars", len(text))

	res := c.deps.Gate.Judge(ctx, text)
	metrics.RecordStage("review", res.Outcome.String())
	decision, ok := res.Get()
	if !ok {
		fmt.Fprintln(c.out, "unavailable")
		if ctx.Err() != nil {
			return Downloaded, ctx.Err()
		}
		log.Warn("review produced no decision", "outcome", res.Outcome, "error", res.Err)
		return Failed, ErrReviewFailed
	}
	if !review.Accepts(decision) {
		fmt.Fprintf(c.out, "rejected (%s)\n", decision.Summary())
		return Failed, fmt.Errorf("%w (%s)", ErrRejected, decision.Summary())
	}
	fmt.Fprintf(c.out, "accepted (%s)\n", decision.Summary())
	log.Info("review accepted", "decision", decision.Summary())
	return Reviewed, nil
}

// enrich fetches activities and, when they are available, summarizes the
// paper. A nil upload means the paper goes out without enrichment.
func (c *Crawler) enrich(ctx context.Context, log *slog.Logger, paper types.Paper, pdf []byte) (*types.NormalizedUpload, error) {
	fmt.Fprint(c.out, "  activities: ")
	acts := c.deps.Activities.FetchActivities(ctx)
	metrics.RecordStage("activities", acts.Outcome.String())
	activity, ok := acts.Get()
	if !ok {
		fmt.Fprintln(c.out, "failed, skipping summary")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("no user activities, skipping summary", "error", acts.Err)
		return nil, nil
	}
	fmt.Fprintln(c.out, "ok")

	fmt.Fprint(c.out, "  summary: ")
	start := time.Now()
	res := c.deps.Summarizer.Summarize(ctx, pdf, activity, paper.ID)
	metrics.RecordStage("summarize", res.Outcome.String())
	enrichment, ok := res.Get()
	if !ok {
		fmt.Fprintln(c.out, "failed, uploading without enrichment")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("summarizer returned nothing", "outcome", res.Outcome, "error", res.Err)
		return nil, nil
	}
	fmt.Fprintln(c.out, "ok")

	up, report := normalize.Normalize(enrichment)
	if len(report.Missing) > 0 {
		log.Info("enrichment fields missing", "fields", report.Missing)
	}
	if report.ThumbnailErr != nil {
		log.Warn("thumbnail dropped", "error", report.ThumbnailErr)
	}
	log.Debug("summarized paper", "elapsed", time.Since(start).Round(time.Millisecond))
	return &up, nil
}

// shorten cuts s to n runes, appending "..." when it was longer.
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
