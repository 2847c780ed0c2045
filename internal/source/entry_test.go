// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"errors"
	"testing"
	"time"

	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-crawler/internal/categories"
)

// --- Identifier and URL derivation ---

func TestPaperID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041v1"},
		{"https://example.org/abs/1234.5678", "1234.5678"},
		{"http://arxiv.org/abs/hep-th/9901001v2", "9901001v2"},
		{"no-slashes", "no-slashes"},
		{"http://arxiv.org/abs/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, paperID(tt.url))
		})
	}
}

func TestPDFURL(t *testing.T) {
	assert.Equal(t, "http://arxiv.org/pdf/2301.07041v1.pdf", pdfURL("http://arxiv.org/abs/2301.07041v1"))
	assert.Equal(t, "", pdfURL(""))
}

// --- DOI extraction ---

func extensions(prefix, name, value string) ext.Extensions {
	return ext.Extensions{prefix: {name: {{Name: name, Value: value}}}}
}

func TestNormalizeDOI(t *testing.T) {
	assert.Equal(t, "https://doi.org/10.1000/xyz", normalizeDOI("10.1000/xyz"))
	assert.Equal(t, "http://dx.doi.org/10.1000/xyz", normalizeDOI("http://dx.doi.org/10.1000/xyz"))
	assert.Equal(t, "https://doi.org/10.1000/xyz", normalizeDOI("https://doi.org/10.1000/xyz"))
}

func TestExtractDOI_ArxivExtension(t *testing.T) {
	e := entry{Extensions: extensions("arxiv", "doi", " 10.1000/abc ")}
	assert.Equal(t, "https://doi.org/10.1000/abc", extractDOI(e))
}

func TestExtractDOI_ExtensionWinsOverLink(t *testing.T) {
	e := entry{
		Extensions: extensions("arxiv", "doi", "10.1000/first"),
		Links:      []link{{Href: "http://dx.doi.org/10.1000/second", Rel: "related", Title: "doi"}},
	}
	assert.Equal(t, "https://doi.org/10.1000/first", extractDOI(e))
}

func TestExtractDOI_Link(t *testing.T) {
	e := entry{Links: []link{
		{Href: "http://arxiv.org/abs/1", Rel: "alternate"},
		{Href: "http://dx.doi.org/10.1000/linked", Rel: "related", Title: "doi"},
	}}
	assert.Equal(t, "http://dx.doi.org/10.1000/linked", extractDOI(e))
}

func TestExtractDOI_DublinCore(t *testing.T) {
	e := entry{Extensions: extensions("dc", "identifier", "doi:10.1000/dc")}
	assert.Equal(t, "https://doi.org/10.1000/dc", extractDOI(e))
}

func TestExtractDOI_IgnoresBlankValues(t *testing.T) {
	e := entry{
		Extensions: extensions("arxiv", "doi", "   "),
		Links:      []link{{Href: "http://dx.doi.org/10.1000/fallback", Title: "doi"}},
	}
	assert.Equal(t, "http://dx.doi.org/10.1000/fallback", extractDOI(e))
}

func TestExtractDOI_None(t *testing.T) {
	e := entry{Extensions: extensions("dc", "identifier", "urn:isbn:123")}
	assert.Equal(t, "", extractDOI(e))
}

// --- Paper transform ---

func TestToPaper(t *testing.T) {
	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("EST", -5*3600))
	e := entry{
		URL:        "http://arxiv.org/abs/2401.00001v1",
		Title:      "A Title",
		Summary:    "An abstract.",
		Published:  &published,
		Authors:    []string{"Ada Lovelace", "Alan Turing"},
		Categories: []string{"cs.AI", "cs.XX"},
	}

	p, err := toPaper(e, categories.Default())
	require.NoError(t, err)

	assert.Equal(t, "2401.00001v1", p.ID)
	assert.Equal(t, "A Title", p.Title)
	assert.Equal(t, []string{"Artificial Intelligence", "cs.XX"}, p.Categories)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, p.Authors)
	assert.Equal(t, "arXiv:2401.00001v1", p.DOI)
	assert.Equal(t, "http://arxiv.org/pdf/2401.00001v1.pdf", p.PDFURL)
	assert.Equal(t, "2024-01-02T08:04:05Z", p.IssuedAt)
}

func TestToPaper_NoPublishedDate(t *testing.T) {
	p, err := toPaper(entry{URL: "https://example.org/abs/1234.5678"}, categories.Default())
	require.NoError(t, err)
	assert.Equal(t, "", p.IssuedAt)
	assert.NotNil(t, p.Authors)
	assert.NotNil(t, p.Categories)
}

func TestToPaper_NoID(t *testing.T) {
	for _, url := range []string{"", "http://arxiv.org/abs/"} {
		_, err := toPaper(entry{URL: url}, categories.Default())
		assert.True(t, errors.Is(err, ErrNoPaperID), "url %q", url)
	}
}
