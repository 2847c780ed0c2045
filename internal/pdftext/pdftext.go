// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from PDF bytes.
package pdftext

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageSeparator joins the text of consecutive pages.
const pageSeparator = "\n\n"

// Extractor pulls page text out of a PDF held in memory.
type Extractor struct {
	log *slog.Logger
}

// New returns an Extractor that logs skipped pages to log (slog.Default when nil).
func New(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{log: log}
}

// Extract returns the text of every readable page joined by a blank line,
// cut to at most maxLength characters (no cut when maxLength <= 0).
// Pages that fail are skipped. Extract never fails: an unreadable
// document yields "".
func (x *Extractor) Extract(data []byte, maxLength int) string {
	pages, err := x.pages(data)
	if err != nil {
		x.log.Warn("PDF text extraction failed", "error", err)
		return ""
	}

	text := strings.Join(pages, pageSeparator)
	if cut, truncated := truncate(text, maxLength); truncated {
		x.log.Info("PDF text truncated", "chars", len([]rune(text)), "max", maxLength)
		return cut
	}
	return text
}

// pages reads every page. A panic inside the PDF library on malformed
// input is reported as an error.
func (x *Extractor) pages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	n := r.NumPage()
	for i := 1; i <= n; i++ {
		text, err := pageText(r, i)
		if err != nil {
			x.log.Debug("skipping PDF page", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	return pages, nil
}

func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", num, rec)
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d not found", num)
	}
	return p.GetPlainText(nil)
}

// truncate cuts s to maxLength runes.
func truncate(s string, maxLength int) (string, bool) {
	if maxLength <= 0 || len(s) <= maxLength {
		return s, false
	}
	r := []rune(s)
	if len(r) <= maxLength {
		return s, false
	}
	return string(r[:maxLength]), true
}
