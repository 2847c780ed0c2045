// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package processed

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-crawler/internal/metrics"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestLoadMissingFile(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "processed_papers.json"), quiet())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("2401.00001"))
	assert.True(t, s.LastUpdated().IsZero())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_papers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := Load(path, quiet())
	assert.Equal(t, 0, s.Len())
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_papers.json")
	body := `{"paper_ids": ["2401.00001", "2401.00002", "2401.00001", ""], "last_updated": "2025-03-01T12:30:45.123456"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s := Load(path, quiet())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"2401.00001", "2401.00002"}, s.IDs())
	assert.True(t, s.Contains("2401.00002"))
	assert.Equal(t, time.Date(2025, 3, 1, 12, 30, 45, 123456000, time.UTC), s.LastUpdated())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ProcessedPapers))
}

func TestAddRewritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "processed_papers.json")
	s := Load(path, quiet())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Add("2401.00001"))
	require.NoError(t, s.Add("2401.00002"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var f file
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, []string{"2401.00001", "2401.00002"}, f.PaperIDs)
	assert.Equal(t, "2026-01-02T03:04:05.000000", f.LastUpdated)
	assert.Equal(t, fixed, s.LastUpdated())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")

	reloaded := Load(path, quiet())
	assert.Equal(t, s.IDs(), reloaded.IDs())
}

func TestAddDuplicateDoesNotRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_papers.json")
	s := Load(path, quiet())
	require.NoError(t, s.Add("2401.00001"))
	first := s.LastUpdated()

	s.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, s.Add("2401.00001"))
	assert.Equal(t, first, s.LastUpdated())
	assert.Equal(t, 1, s.Len())
}

func TestAddWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := Load(filepath.Join(blocker, "processed_papers.json"), quiet())
	err := s.Add("2401.00001")
	require.Error(t, err)
	assert.True(t, s.Contains("2401.00001"))
}
