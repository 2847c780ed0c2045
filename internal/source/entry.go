// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"errors"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/pdiddy/arxiv-crawler/internal/categories"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// ErrNoPaperID is returned when an entry's URL yields no paper id.
var ErrNoPaperID = errors.New("entry has no paper id")

// issuedAtLayout is the timestamp format the backend expects.
const issuedAtLayout = "2006-01-02T15:04:05Z"

// entry is the parser-independent view of one feed entry that the
// transform and the DOI extractors work on.
type entry struct {
	URL        string
	Title      string
	Summary    string
	Published  *time.Time
	Authors    []string
	Categories []string
	Links      []link
	Extensions ext.Extensions
}

type link struct {
	Href  string
	Rel   string
	Title string
}

func newEntry(e *atom.Entry) entry {
	out := entry{
		URL:        strings.TrimSpace(e.ID),
		Title:      strings.Join(strings.Fields(e.Title), " "),
		Summary:    strings.TrimSpace(e.Summary),
		Published:  e.PublishedParsed,
		Extensions: e.Extensions,
	}
	for _, a := range e.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			out.Authors = append(out.Authors, strings.TrimSpace(a.Name))
		}
	}
	for _, c := range e.Categories {
		if c != nil && c.Term != "" {
			out.Categories = append(out.Categories, c.Term)
		}
	}
	for _, l := range e.Links {
		if l != nil {
			out.Links = append(out.Links, link{Href: l.Href, Rel: l.Rel, Title: l.Title})
		}
	}
	return out
}

// extensionValue returns the first non-empty value of prefix:name.
func (e entry) extensionValue(prefix, name string) string {
	for _, x := range e.Extensions[prefix][name] {
		if v := strings.TrimSpace(x.Value); v != "" {
			return v
		}
	}
	return ""
}

// doiExtractor pulls a DOI out of an entry, or returns "".
type doiExtractor func(entry) string

// doiExtractors are tried in order; the first non-empty result wins.
var doiExtractors = []doiExtractor{
	arxivDOI,
	doiLink,
	dcIdentifierDOI,
}

// arxivDOI reads the <arxiv:doi> element.
func arxivDOI(e entry) string {
	return e.extensionValue("arxiv", "doi")
}

// doiLink reads the related link arXiv publishes with title="doi".
func doiLink(e entry) string {
	for _, l := range e.Links {
		if strings.EqualFold(l.Title, "doi") && l.Href != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	return ""
}

// dcIdentifierDOI reads a Dublin Core identifier of the form "doi:10.x/y".
func dcIdentifierDOI(e entry) string {
	for _, x := range e.Extensions["dc"]["identifier"] {
		v := strings.TrimSpace(x.Value)
		if len(v) > 4 && strings.EqualFold(v[:4], "doi:") {
			return strings.TrimSpace(v[4:])
		}
	}
	return ""
}

// extractDOI runs the extractor chain and normalizes the winner.
func extractDOI(e entry) string {
	for _, extract := range doiExtractors {
		if doi := strings.TrimSpace(extract(e)); doi != "" {
			return normalizeDOI(doi)
		}
	}
	return ""
}

// normalizeDOI turns a bare DOI into a resolver URL and leaves URLs alone.
func normalizeDOI(doi string) string {
	if strings.HasPrefix(doi, "http") {
		return doi
	}
	return "https://doi.org/" + doi
}

// paperID returns the final "/"-delimited segment of url.
func paperID(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

// pdfURL derives the PDF location from the abstract page URL.
func pdfURL(url string) string {
	if url == "" {
		return ""
	}
	return strings.ReplaceAll(url, "/abs/", "/pdf/") + ".pdf"
}

// toPaper converts an entry into a Paper. It fails only when no paper id
// can be derived.
func toPaper(e entry, mapper *categories.Mapper) (types.Paper, error) {
	id := paperID(e.URL)
	if id == "" {
		return types.Paper{}, ErrNoPaperID
	}

	doi := extractDOI(e)
	if doi == "" {
		doi = "arXiv:" + id
	}

	var issued string
	if e.Published != nil {
		issued = e.Published.UTC().Format(issuedAtLayout)
	}

	return types.Paper{
		ID:         id,
		Title:      e.Title,
		Categories: mapper.Names(e.Categories),
		Authors:    append([]string{}, e.Authors...),
		Summary:    e.Summary,
		DOI:        doi,
		URL:        e.URL,
		PDFURL:     pdfURL(e.URL),
		IssuedAt:   issued,
	}, nil
}
