// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the arxiv-crawler CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/arxiv-crawler/internal/config"
	"github.com/pdiddy/arxiv-crawler/internal/logging"
	"github.com/pdiddy/arxiv-crawler/internal/metrics"
	"github.com/pdiddy/arxiv-crawler/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from the global flags before any subcommand runs.
var (
	logger   = slog.Default()
	closeLog = func() error { return nil }
)

// rootCmd is the base command for the arxiv-crawler CLI.
var rootCmd = &cobra.Command{
	Use:   "arxiv-crawler",
	Short: "Crawl arXiv, review and summarize new papers, and upload them",
	Long: `arxiv-crawler pulls recent papers from the arXiv export API, downloads each
PDF, optionally screens it with an LLM reviewer, asks the summarizer service
for enrichment, and uploads the result to the backend.

Use crawl for a one-shot run over the latest papers and watch to poll for new
papers continuously.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		file, _ := cmd.Flags().GetString("log-file")
		log, closeFn, err := logging.Open(level, format, file)
		if err != nil {
			return err
		}
		logger, closeLog = log, closeFn
		slog.SetDefault(log)

		s, err := secrets.Load(".secrets/", log)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			config.ApplySecrets(viper.GetViper(), s)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", secrets.Names(s))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./arxiv-crawler.yaml or ~/.config/arxiv-crawler/arxiv-crawler.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text or json)")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}

func initConfig() {
	// A missing .env is normal; variables may come from the environment.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("arxiv-crawler")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arxiv-crawler"))
		}
	}

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// serveMetrics starts the metrics listener when --metrics-addr is set.
func serveMetrics(ctx context.Context, cmd *cobra.Command) {
	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		return
	}
	logger.Info("serving metrics", "addr", addr)
	go func() {
		if err := metrics.Serve(ctx, addr); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command and returns the process exit code. The log
// file is closed on every path, including when the command fails.
func execute(ctx context.Context, stderr io.Writer) int {
	err := rootCmd.ExecuteContext(ctx)
	defer func() {
		if cerr := closeLog(); cerr != nil {
			fmt.Fprintf(stderr, "closing log file: %v\n", cerr)
		}
		closeLog = func() error { return nil }
	}()

	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "\nInterrupted by user.")
		logger.Warn("interrupted by user")
		return 1
	}
	fmt.Fprintf(stderr, "Error: %+v\n", err)
	logger.Error("command failed", "error", err)
	return 1
}
