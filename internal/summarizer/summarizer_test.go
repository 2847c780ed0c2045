// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

func newClient(url string, timeout time.Duration) *Client {
	return New(types.SummarizerConfig{URL: url, Timeout: timeout},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSummarize_SendsForm(t *testing.T) {
	var (
		gotID, gotActivity, gotFilename, gotFileType string
		gotFile                                      []byte
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotID = r.FormValue("id")
		gotActivity = r.FormValue("activity")
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		gotFile, _ = io.ReadAll(f)
		gotFilename = hdr.Filename
		gotFileType = hdr.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"summary":"s","hashtags":["#a"],"thumbnail":"aGk="}`)
	}))
	defer ts.Close()

	activity := json.RawMessage(`[{"userId":"u1","action":"read"}]`)
	res := newClient(ts.URL, time.Second).Summarize(context.Background(), []byte("%PDF"), activity, "2401.00001v1")

	e, ok := res.Get()
	require.True(t, ok, "outcome %s: %v", res.Outcome, res.Err)
	assert.Equal(t, "s", e.Summary)
	assert.JSONEq(t, `["#a"]`, string(e.Hashtags))
	assert.Equal(t, "aGk=", e.Thumbnail)

	assert.Equal(t, "2401.00001v1", gotID)
	assert.JSONEq(t, string(activity), gotActivity)
	assert.Equal(t, []byte("%PDF"), gotFile)
	assert.Equal(t, "2401.00001v1.pdf", gotFilename)
	assert.Equal(t, "application/pdf", gotFileType)
}

func TestSummarize_NilActivityIsEmptyArray(t *testing.T) {
	var gotActivity string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActivity = r.FormValue("activity")
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()

	res := newClient(ts.URL, time.Second).Summarize(context.Background(), []byte("x"), nil, "1")
	assert.Equal(t, types.OutcomeOK, res.Outcome)
	assert.Equal(t, "[]", gotActivity)
}

func TestSummarize_FailuresAreAbsent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html>oops</html>`)
		}},
		{"wrong shape", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `["not","an","object"]`)
		}},
		{"timeout", func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			fmt.Fprint(w, `{}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			res := newClient(ts.URL, 50*time.Millisecond).Summarize(context.Background(), []byte("x"), nil, "1")
			assert.Equal(t, types.OutcomeAbsent, res.Outcome)
			assert.Error(t, res.Err)
		})
	}
}

func TestSummarize_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	res := newClient(url, time.Second).Summarize(context.Background(), []byte("x"), nil, "1")
	assert.Equal(t, types.OutcomeAbsent, res.Outcome)
}

func TestBuildForm(t *testing.T) {
	body, ct, err := buildForm([]byte("pdf"), json.RawMessage(`{"a":1}`), "id-1")
	require.NoError(t, err)
	assert.Contains(t, ct, "multipart/form-data; boundary=")

	var buf bytes.Buffer
	_, err = io.Copy(&buf, body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `name="activity"`)
	assert.Contains(t, buf.String(), `{"a":1}`)
}
