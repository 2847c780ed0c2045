// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize reshapes a summarizer payload into the form fields the
// backend upload expects.
package normalize

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// emptyArray stands in for a missing tableOfContents or contents.
var emptyArray = json.RawMessage("[]")

// Report lists what Normalize had to leave out. Nothing in it is fatal.
type Report struct {
	// Missing names the payload fields that were absent or empty.
	Missing []string

	// ThumbnailErr is set when the thumbnail was present but not valid base64.
	ThumbnailErr error
}

// Normalize converts e into a NormalizedUpload. Content is always produced;
// every other field is set only when the payload carried a non-empty value.
func Normalize(e types.Enrichment) (types.NormalizedUpload, Report) {
	var out types.NormalizedUpload
	var rep Report
	missing := func(field string) { rep.Missing = append(rep.Missing, field) }

	out.Summary = e.Summary
	if e.Summary == "" {
		missing("summary")
	}
	out.TranslatedSummary = e.TranslatedSummary
	if e.TranslatedSummary == "" {
		missing("translatedSummary")
	}

	toc := e.TableOfContents
	if isEmptyJSON(toc) {
		missing("tableOfContents")
		toc = emptyArray
	}
	contents := e.Contents
	if isEmptyJSON(contents) {
		missing("contents")
		contents = emptyArray
	}
	out.Content = `{"tableOfContents":` + compact(toc) + `,"contents":` + compact(contents) + `}`

	if isEmptyJSON(e.Hashtags) {
		missing("hashtags")
	} else {
		out.Hashtags = compact(e.Hashtags)
	}

	if ids, ok := userIDs(e.InterestedUsers); ok {
		out.InterestedUsers = ids
	} else {
		missing("interestedUsers")
	}

	if isEmptyJSON(e.Notifications) {
		missing("notifications")
	} else {
		out.Notifications = compact(e.Notifications)
	}

	if strings.TrimSpace(e.Thumbnail) == "" {
		missing("thumbnail")
	} else if img, err := decodeThumbnail(e.Thumbnail); err != nil {
		rep.ThumbnailErr = err
	} else {
		out.ThumbnailBytes = img
	}

	return out, rep
}

// userIDs extracts the userId of every object in a JSON array, in order,
// and returns them as a JSON array. Elements without a userId are dropped.
// ok is false when raw is not an array.
func userIDs(raw json.RawMessage) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var users []json.RawMessage
	if err := json.Unmarshal(raw, &users); err != nil || users == nil {
		return "", false
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(u, &fields); err != nil {
			continue
		}
		if id, ok := fields["userId"]; ok {
			ids = append(ids, compact(id))
		}
	}
	return "[" + strings.Join(ids, ",") + "]", true
}

// isEmptyJSON reports whether raw is missing, invalid, or a falsy JSON
// value: null, false, 0, "", [] or {}.
func isEmptyJSON(raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// compact strips insignificant whitespace while keeping key order and
// non-ASCII text as received.
func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func decodeThumbnail(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if img, err := base64.StdEncoding.DecodeString(s); err == nil {
		return img, nil
	}
	img, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("decoding thumbnail: %w", err)
	}
	return img, nil
}
