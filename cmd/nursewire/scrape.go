package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nursewire/nursewire/internal/model"
	"github.com/nursewire/nursewire/internal/notify"
	"github.com/nursewire/nursewire/internal/store"
)

var (
	scrapeMaxPages int
	scrapeDryRun   bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <employer-slug>",
	Short: "Run one employer's scrape pipeline",
	Long: "Runs the full pipeline for a single configured employer: paginate the career site, " +
		"classify and normalize postings, reconcile the board, and ping the side channel. " +
		"Exit 0 on completion (partial failures are logged), non-zero on unrecoverable setup failure.",
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "override the configured listing page ceiling")
	scrapeCmd.Flags().BoolVar(&scrapeDryRun, "dry-run", false, "scrape and classify without persisting or pinging")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	emp, ok := cfg.EmployerBySlug(args[0])
	if !ok {
		logger.Error("unknown employer", "slug", args[0])
		os.Exit(1)
	}

	var st model.Store
	var pinger model.Pinger
	if scrapeDryRun {
		logger.Info("dry-run mode: nothing will be persisted or pinged")
		st = store.NewNopStore()
		pinger = notify.NewLogPinger(logger)
	} else {
		sqlStore := openStore(cfg, logger)
		defer sqlStore.Close()
		st = sqlStore
		httpClient := &http.Client{Timeout: 30 * time.Second}
		pinger = setupPinger(cfg, sqlStore, httpClient, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := buildRunner(cfg, st, pinger, logger)
	summary, err := r.Run(ctx, emp, scrapeMaxPages)
	if err != nil {
		logger.Error("scrape failed", "employer", emp.Slug, "error", err)
		os.Exit(1)
	}

	for stage, n := range summary.Rejected {
		logger.Info("rejections", "stage", string(stage), "count", n)
	}
	for _, skip := range summary.Result.Skipped {
		logger.Warn("record skipped", "source_url", skip.SourceURL, "reason", skip.Reason)
	}

	fmt.Printf("%s: %d fetched, %d accepted, %d created, %d updated, %d reactivated, %d deactivated\n",
		emp.Slug, summary.Fetched, summary.Accepted,
		summary.Result.Created, summary.Result.Updated,
		summary.Result.Reactivated, summary.Result.Deactivated)
	return nil
}
