// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-crawler/internal/config"
	"github.com/pdiddy/arxiv-crawler/internal/processed"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll arXiv for new papers until interrupted",
	Long: `Watch fetches the most recent papers (source.scheduled_max_results, default
10) every crawl.poll_interval (default 60s) and processes the ones not yet in
the processed papers file. Each successful upload is recorded there, so a
paper is uploaded once even across restarts. A failed batch is logged and
polling continues.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "pause between polls (default from config)")
	watchCmd.Flags().String("processed-file", "", "processed papers file (default from config)")
	addReviewFlag(watchCmd)

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.All, func(cfg *types.Config) {
		if d, _ := cmd.Flags().GetDuration("interval"); d > 0 {
			cfg.Crawl.PollInterval = d
		}
		if f, _ := cmd.Flags().GetString("processed-file"); f != "" {
			cfg.Crawl.ProcessedFile = f
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

	seen := processed.Load(cfg.Crawl.ProcessedFile, logger)
	fmt.Printf("arXiv crawler watching (every %s, %d processed so far)\n", cfg.Crawl.PollInterval, seen.Len())
	fmt.Println("Press Ctrl+C to stop.")
	return c.Watch(ctx, seen)
}
