package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nursewire/nursewire/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scraping daemon",
	Long:  "Runs scrape cycles over all enabled employers plus the periodic expiry sweep; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"employers", len(cfg.Employers),
		"scrape_interval", cfg.ScrapeInterval.String(),
		"sweep_interval", cfg.SweepInterval.String(),
		"expiry_window", cfg.ExpiryWindow.String(),
	)

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	pinger := setupPinger(cfg, sqlStore, httpClient, logger)
	r := buildRunner(cfg, sqlStore, pinger, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(r, cfg.Employers, cfg.ScrapeInterval, cfg.SweepInterval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
