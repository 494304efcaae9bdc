package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/nursewire/nursewire/internal/review"
)

var reviewEmployer string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse the stored posting board",
	Long:  "Opens an interactive browser over stored postings: filter by lifecycle state, inspect fields and expiry.",
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewEmployer, "employer", "", "limit to one employer slug")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	postings, err := sqlStore.ListPostings(context.Background(), reviewEmployer, nil)
	if err != nil {
		logger.Error("failed to load postings", "error", err)
		os.Exit(1)
	}
	if len(postings) == 0 {
		logger.Info("no postings stored yet — run a scrape first")
		return nil
	}

	return review.Run(postings)
}
