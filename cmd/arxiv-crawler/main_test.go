// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-crawler/internal/config"
	"github.com/pdiddy/arxiv-crawler/internal/crawl"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults(viper.GetViper())
	t.Cleanup(viper.Reset)
}

func TestLoadConfigOverride(t *testing.T) {
	resetViper(t)
	t.Setenv("CRAWLER_SECRET_KEY", "secret")
	t.Setenv("AI_SERVER_URL", "http://localhost:8001")

	cfg, err := loadConfig(config.All, func(cfg *types.Config) {
		cfg.Review.Enabled = false
		cfg.Source.LatestMaxResults = 5
	})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Source.LatestMaxResults)
	assert.False(t, cfg.Review.Enabled)
	assert.Equal(t, "http://localhost:8001/api/summarize-paper", cfg.Summarizer.URL)
}

func TestLoadConfigValidatesAfterOverride(t *testing.T) {
	resetViper(t)
	t.Setenv("CRAWLER_SECRET_KEY", "")

	_, err := loadConfig(config.Source, func(cfg *types.Config) { cfg.Source.Query = "" })
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "source.query is required")
}

func TestFetchNeedsNoCredentials(t *testing.T) {
	resetViper(t)
	t.Setenv("CRAWLER_SECRET_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := loadConfig(config.Source, nil)
	assert.NoError(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"crawl", "watch", "fetch", "review", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

// openFDsFor lists the descriptors of this process that point at path.
func openFDsFor(t *testing.T, path string) []string {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("no /proc/self/fd on this platform")
	}
	var fds []string
	for _, e := range entries {
		target, err := os.Readlink(filepath.Join("/proc/self/fd", e.Name()))
		if err == nil && target == path {
			fds = append(fds, e.Name())
		}
	}
	return fds
}

func TestExecuteClosesLogFileOnFailure(t *testing.T) {
	resetViper(t)
	t.Setenv("CRAWLER_SECRET_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "crawler.log")
	rootCmd.SetArgs([]string{"--log-file", path, "crawl"})
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		logger = prev
		rootCmd.SetArgs(nil)
		_ = rootCmd.PersistentFlags().Set("log-file", "")
	})

	var stderr bytes.Buffer
	code := execute(context.Background(), &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid configuration")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "command failed")
	assert.Empty(t, openFDsFor(t, path), "log file left open")
}

func TestReportCrawlWarnsOnFailures(t *testing.T) {
	var out bytes.Buffer
	reportCrawl(&out, crawl.Tally{Succeeded: 3}, 90*time.Second)
	assert.Contains(t, out.String(), "Crawl complete: 3 succeeded, 0 failed, 3 total in 1m30s")
	assert.NotContains(t, out.String(), "Warning")

	out.Reset()
	reportCrawl(&out, crawl.Tally{Succeeded: 1, Failed: 2}, time.Second)
	assert.Contains(t, out.String(), "1 succeeded, 2 failed, 3 total")
	assert.Contains(t, out.String(), "Warning: 2 papers failed")
}
