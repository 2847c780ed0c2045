// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// Enrichment is the raw payload returned by the summarizer service. Every
// field is optional. Nested fields are kept as raw JSON so that an
// unexpected shape in one of them does not invalidate the whole payload.
type Enrichment struct {
	Summary           string          `json:"summary,omitempty"`
	TranslatedSummary string          `json:"translatedSummary,omitempty"`
	TableOfContents   json.RawMessage `json:"tableOfContents,omitempty"`
	Contents          json.RawMessage `json:"contents,omitempty"`
	Hashtags          json.RawMessage `json:"hashtags,omitempty"`
	InterestedUsers   json.RawMessage `json:"interestedUsers,omitempty"`

	// Notifications is either a sequence or a single object.
	Notifications json.RawMessage `json:"notifications,omitempty"`

	// Thumbnail is a base64-encoded PNG.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// NormalizedUpload is an Enrichment reshaped into the string fields the
// backend upload form expects. An empty string means the field is omitted
// from the form, except Content which is always set.
type NormalizedUpload struct {
	Summary           string
	TranslatedSummary string

	// Content is a JSON object holding tableOfContents and contents.
	Content string

	// Hashtags is a JSON array.
	Hashtags string

	// InterestedUsers is a JSON array of userId values.
	InterestedUsers string

	// Notifications is the JSON value as received.
	Notifications string

	// ThumbnailBytes is the decoded thumbnail, nil when absent or undecodable.
	ThumbnailBytes []byte
}
