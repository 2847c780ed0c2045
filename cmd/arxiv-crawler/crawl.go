// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-crawler/internal/config"
	"github.com/pdiddy/arxiv-crawler/internal/crawl"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Process the latest papers once",
	Long: `Crawl fetches the latest papers from arXiv (source.latest_max_results,
default 100) and runs every one through download, review, summarization and
upload. Papers are processed one at a time with crawl.request_delay between
them. Nothing is remembered between runs.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().Int("max-results", 0, "number of papers to fetch (default from config)")
	crawlCmd.Flags().String("query", "", "arXiv search_query (default from config)")
	addReviewFlag(crawlCmd)

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.All, func(cfg *types.Config) {
		if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
			cfg.Source.LatestMaxResults = n
		}
		if q, _ := cmd.Flags().GetString("query"); q != "" {
			cfg.Source.Query = q
		}
		if reviewDisabled(cmd) {
			cfg.Review.Enabled = false
		}
	})
	if err != nil {
		return err
	}

	c, err := newCrawler(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	serveMetrics(ctx, cmd)

	fmt.Printf("arXiv crawl (latest %d)\n", cfg.Source.LatestMaxResults)
	start := time.Now()
	tally, err := c.Crawl(ctx)
	if err != nil {
		return err
	}
	reportCrawl(os.Stdout, tally, time.Since(start))
	return nil
}

// reportCrawl prints the closing line of a one-shot crawl. Failed papers
// produce a warning but never a non-zero exit.
func reportCrawl(w io.Writer, tally crawl.Tally, elapsed time.Duration) {
	fmt.Fprintf(w, "\nCrawl complete: %d succeeded, %d failed, %d total in %s\n",
		tally.Succeeded, tally.Failed, tally.Total(), elapsed.Round(time.Second))
	if tally.HasFailures() {
		fmt.Fprintf(w, "Warning: %d papers failed; see the log for details.\n", tally.Failed)
		logger.Warn("crawl finished with failures", "failed", tally.Failed, "total", tally.Total())
	}
}
