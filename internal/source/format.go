// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// FormatTable writes papers as an aligned table to w.
func FormatTable(papers []types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-16s  %-50s  %-20s  %-10s  %s\n",
		"#", "Paper ID", "Title", "Authors", "Issued", "DOI")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for i, p := range papers {
		issued := p.IssuedAt
		if len(issued) >= 10 {
			issued = issued[:10]
		}
		fmt.Fprintf(w, "%-4d  %-16s  %-50s  %-20s  %-10s  %s\n",
			i+1, p.ID, truncate(p.Title, 50), formatAuthors(p.Authors), issued, p.DOI)
	}

	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers []types.Paper, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(papers)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
