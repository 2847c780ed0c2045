// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package processed tracks which papers have already been uploaded so that
// the polling loop never uploads the same paper twice. The set lives in a
// single JSON file that is rewritten in full after every addition.
package processed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pdiddy/arxiv-crawler/internal/metrics"
)

// timeLayout matches the ISO-8601 form written by earlier deployments.
const timeLayout = "2006-01-02T15:04:05.000000"

// file is the on-disk layout.
type file struct {
	PaperIDs    []string `json:"paper_ids"`
	LastUpdated string   `json:"last_updated"`
}

// Set is the idempotency set. It is not safe for concurrent use; the crawl
// loop is its only writer.
type Set struct {
	path        string
	ids         map[string]struct{}
	order       []string
	lastUpdated time.Time
	now         func() time.Time
}

// Load reads the set at path. A missing or unreadable file, or one that is
// not valid JSON, yields an empty set and a warning.
func Load(path string, log *slog.Logger) *Set {
	if log == nil {
		log = slog.Default()
	}
	s := &Set{path: path, ids: make(map[string]struct{}), now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read processed papers file, starting empty", "path", path, "error", err)
		}
		metrics.ProcessedPapers.Set(0)
		return s
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn("processed papers file is corrupt, starting empty", "path", path, "error", err)
		metrics.ProcessedPapers.Set(0)
		return s
	}
	for _, id := range f.PaperIDs {
		s.insert(id)
	}
	if t, err := time.Parse(timeLayout, f.LastUpdated); err == nil {
		s.lastUpdated = t
	} else if t, err := time.Parse(time.RFC3339Nano, f.LastUpdated); err == nil {
		s.lastUpdated = t
	}
	metrics.ProcessedPapers.Set(float64(len(s.order)))
	log.Debug("loaded processed papers", "path", path, "count", len(s.order))
	return s
}

func (s *Set) insert(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Contains reports whether id has been processed.
func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of processed ids.
func (s *Set) Len() int { return len(s.order) }

// IDs returns the processed ids in insertion order.
func (s *Set) IDs() []string { return slices.Clone(s.order) }

// LastUpdated returns the time of the last successful save, or the zero
// time when the set has never been saved.
func (s *Set) LastUpdated() time.Time { return s.lastUpdated }

// Add records id and rewrites the file. Adding an id that is already
// present does not touch the file. On a write error the id stays in memory.
func (s *Set) Add(id string) error {
	if !s.insert(id) {
		return nil
	}
	metrics.ProcessedPapers.Set(float64(len(s.order)))
	return s.save()
}

// save writes the set to a temp file in the same directory and renames it
// over the target.
func (s *Set) save() error {
	now := s.now()
	data, err := json.MarshalIndent(file{
		PaperIDs:    s.order,
		LastUpdated: now.Format(timeLayout),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding processed papers: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".processed-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing processed papers: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	s.lastUpdated = now
	return nil
}
