// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures passed between the crawler stages:
// the paper record produced by the source fetcher, the enrichment payload
// returned by the summarizer, its normalized upload form, and configuration.
package types

// Paper identifies one paper pulled from the source index.
type Paper struct {
	// ID is the stable external identifier, the final path segment of URL
	// (e.g. "2301.07041v1").
	ID string `json:"paperId" yaml:"paper_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Categories lists human-readable category names in source order.
	Categories []string `json:"categories" yaml:"categories"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the abstract.
	Summary string `json:"summary" yaml:"summary"`

	// DOI is a resolvable DOI URL, or "arXiv:{ID}" when the source has none.
	DOI string `json:"doi" yaml:"doi"`

	// URL is the canonical abstract page.
	URL string `json:"url" yaml:"url"`

	// PDFURL is derived from URL ("/abs/" becomes "/pdf/", ".pdf" appended).
	PDFURL string `json:"pdfUrl" yaml:"pdf_url"`

	// IssuedAt is the publication time as "2006-01-02T15:04:05Z", or empty.
	IssuedAt string `json:"issuedAt" yaml:"issued_at"`
}
