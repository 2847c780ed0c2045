// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

func enrichment(t *testing.T, body string) types.Enrichment {
	t.Helper()
	var e types.Enrichment
	require.NoError(t, json.Unmarshal([]byte(body), &e))
	return e
}

func TestNormalize_EmptyPayload(t *testing.T) {
	out, rep := Normalize(types.Enrichment{})

	assert.Equal(t, `{"tableOfContents":[],"contents":[]}`, out.Content)
	assert.Empty(t, out.Summary)
	assert.Empty(t, out.Hashtags)
	assert.Empty(t, out.InterestedUsers)
	assert.Empty(t, out.Notifications)
	assert.Nil(t, out.ThumbnailBytes)
	assert.ElementsMatch(t, []string{
		"summary", "translatedSummary", "tableOfContents", "contents",
		"hashtags", "interestedUsers", "notifications", "thumbnail",
	}, rep.Missing)
	assert.NoError(t, rep.ThumbnailErr)
}

func TestNormalize_FullPayload(t *testing.T) {
	e := enrichment(t, `{
		"summary": "Short summary",
		"translatedSummary": "요약",
		"tableOfContents": [ {"title": "Intro"}, {"title": "Method"} ],
		"contents": [ {"section": "Intro", "body": "<b>x</b>"} ],
		"hashtags": ["#ai", "#vision"],
		"interestedUsers": [ {"userId": "u1", "score": 0.9}, {"name": "nobody"}, {"userId": 42} ],
		"notifications": {"userId": "u1", "message": "새 논문"},
		"thumbnail": "aGVsbG8="
	}`)

	out, rep := Normalize(e)

	assert.Equal(t, "Short summary", out.Summary)
	assert.Equal(t, "요약", out.TranslatedSummary)
	assert.Equal(t,
		`{"tableOfContents":[{"title":"Intro"},{"title":"Method"}],"contents":[{"section":"Intro","body":"<b>x</b>"}]}`,
		out.Content)
	assert.Equal(t, `["#ai","#vision"]`, out.Hashtags)
	assert.Equal(t, `["u1",42]`, out.InterestedUsers)
	assert.Equal(t, `{"userId":"u1","message":"새 논문"}`, out.Notifications)
	assert.Equal(t, []byte("hello"), out.ThumbnailBytes)
	assert.Empty(t, rep.Missing)
}

func TestNormalize_ContentDefaultsPerField(t *testing.T) {
	out, _ := Normalize(enrichment(t, `{"tableOfContents": ["a"], "contents": []}`))
	assert.Equal(t, `{"tableOfContents":["a"],"contents":[]}`, out.Content)

	out, _ = Normalize(enrichment(t, `{"tableOfContents": null, "contents": ["b"]}`))
	assert.Equal(t, `{"tableOfContents":[],"contents":["b"]}`, out.Content)
}

func TestNormalize_InterestedUsersOrder(t *testing.T) {
	out, _ := Normalize(enrichment(t, `{"interestedUsers": [{"userId":"c"},{"userId":"a"},{"x":1},{"userId":"b"}]}`))
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(out.InterestedUsers), &ids))
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestNormalize_EmptyInterestedUsersStillSerialized(t *testing.T) {
	out, rep := Normalize(enrichment(t, `{"interestedUsers": []}`))
	assert.Equal(t, "[]", out.InterestedUsers)
	assert.NotContains(t, rep.Missing, "interestedUsers")
}

func TestNormalize_InterestedUsersNotArray(t *testing.T) {
	out, rep := Normalize(enrichment(t, `{"interestedUsers": {"userId": "u1"}}`))
	assert.Empty(t, out.InterestedUsers)
	assert.Contains(t, rep.Missing, "interestedUsers")
}

func TestNormalize_NotificationsSequence(t *testing.T) {
	out, _ := Normalize(enrichment(t, `{"notifications": [{"a":1},{"b":2}]}`))
	assert.Equal(t, `[{"a":1},{"b":2}]`, out.Notifications)
}

func TestNormalize_BadThumbnail(t *testing.T) {
	out, rep := Normalize(types.Enrichment{Thumbnail: "not base64 !!!"})
	assert.Nil(t, out.ThumbnailBytes)
	assert.Error(t, rep.ThumbnailErr)
	assert.NotContains(t, rep.Missing, "thumbnail")
}

func TestNormalize_UnpaddedThumbnail(t *testing.T) {
	out, rep := Normalize(types.Enrichment{Thumbnail: "aGVsbG8\n"})
	assert.NoError(t, rep.ThumbnailErr)
	assert.Equal(t, []byte("hello"), out.ThumbnailBytes)
}

func TestIsEmptyJSON(t *testing.T) {
	empty := []string{``, `   `, `null`, `false`, `0`, `""`, `[]`, `{}`, `[ ]`, `{bad`}
	for _, raw := range empty {
		assert.True(t, isEmptyJSON(json.RawMessage(raw)), "%q", raw)
	}
	present := []string{`true`, `1`, `"x"`, `[0]`, `{"a":null}`}
	for _, raw := range present {
		assert.False(t, isEmptyJSON(json.RawMessage(raw)), "%q", raw)
	}
}
