// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/arxiv-crawler/internal/backend"
	"github.com/pdiddy/arxiv-crawler/internal/categories"
	"github.com/pdiddy/arxiv-crawler/internal/config"
	"github.com/pdiddy/arxiv-crawler/internal/crawl"
	"github.com/pdiddy/arxiv-crawler/internal/download"
	"github.com/pdiddy/arxiv-crawler/internal/pdftext"
	"github.com/pdiddy/arxiv-crawler/internal/review"
	"github.com/pdiddy/arxiv-crawler/internal/source"
	"github.com/pdiddy/arxiv-crawler/internal/summarizer"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// loadConfig builds the configuration, applies flag overrides, and
// validates the parts the command needs.
func loadConfig(parts config.Part, override func(*types.Config)) (types.Config, error) {
	return config.Load(viper.GetViper(), parts, override)
}

// addReviewFlag registers --no-review on cmd.
func addReviewFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("no-review", false, "skip the review gate and accept every paper")
}

func reviewDisabled(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("no-review")
	return v
}

// newCrawler wires the production collaborators.
func newCrawler(cfg types.Config) (*crawl.Crawler, error) {
	deps := crawl.Deps{
		Source:     source.NewFetcher(cfg.Source, categories.Default(), logger),
		Downloader: download.New(cfg.Download),
		Extractor:  pdftext.New(logger),
		Summarizer: summarizer.New(cfg.Summarizer, logger),
	}
	client := backend.New(cfg.Backend, logger)
	deps.Activities = client
	deps.Uploader = client

	if cfg.Review.Enabled {
		r, err := review.NewReviewer(cfg.Review, logger)
		if err != nil {
			return nil, err
		}
		deps.Gate = r
		logger.Info("review gate enabled", "model", cfg.Review.Model, "reflections", cfg.Review.Reflections)
	} else {
		logger.Info("review gate disabled, accepting every paper")
	}
	return crawl.New(deps, cfg, os.Stdout, logger), nil
}
