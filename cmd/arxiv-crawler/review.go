// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-crawler/internal/config"
	"github.com/pdiddy/arxiv-crawler/internal/pdftext"
	"github.com/pdiddy/arxiv-crawler/internal/review"
	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review <pdf>",
	Short: "Run the review gate on a local PDF",
	Long: `Review extracts the text of a local PDF, runs the LLM reviewer on it, and
prints the final review and whether the crawler would accept the paper.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().Int("reflections", -1, "reflection rounds (default from config)")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Review, func(cfg *types.Config) {
		cfg.Review.Enabled = true
		if n, _ := cmd.Flags().GetInt("reflections"); n >= 0 {
			cfg.Review.Reflections = n
		}
	})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading PDF: %w", err)
	}
	text := pdftext.New(logger).Extract(data, cfg.Download.MaxTextLength)
	fmt.Fprintf(os.Stderr, "Extracted %d characters from %s\n", len([]rune(text)), args[0])

	reviewer, err := review.NewReviewer(cfg.Review, logger)
	if err != nil {
		return err
	}
	res := reviewer.Judge(cmd.Context(), text)
	if res.Outcome == types.OutcomeFatal {
		return res.Err
	}
	decision, ok := res.Get()
	if !ok {
		fmt.Printf("No decision (%v)\naccepted: false\n", res.Err)
		return nil
	}

	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding review: %w", err)
	}
	fmt.Println(string(out))
	fmt.Printf("\n%s\naccepted: %t\n", decision.Summary(), review.Accepts(decision))
	return nil
}
