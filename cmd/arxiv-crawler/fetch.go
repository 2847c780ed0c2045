// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-crawler/internal/categories"
	"github.com/pdiddy/arxiv-crawler/internal/config"
	"github.com/pdiddy/arxiv-crawler/internal/source"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Query arXiv and print the normalized paper records",
	Long: `Fetch runs only the source query and prints the paper records the crawler
would process, as a table or as JSON. Nothing is downloaded or uploaded.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("max-results", 10, "number of papers to fetch")
	fetchCmd.Flags().String("query", "", "arXiv search_query (default from config)")
	fetchCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	cfg, err := loadConfig(config.Source, func(cfg *types.Config) {
		if q, _ := cmd.Flags().GetString("query"); q != "" {
			cfg.Source.Query = q
		}
	})
	if err != nil {
		return err
	}

	fetcher := source.NewFetcher(cfg.Source, categories.Default(), logger)
	results, err := fetcher.Fetch(cmd.Context(), maxResults)
	if err != nil {
		return err
	}
	papers, errs := results.Papers()
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", e)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return source.FormatJSON(papers, os.Stdout)
	}
	source.FormatTable(papers, os.Stdout)
	return nil
}
