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
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the time-based expiry sweep once",
	Long: "Deactivates every active posting whose governing expiry date has passed, " +
		"independent of any scrape. Safe to re-run.",
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	pinger := setupPinger(cfg, sqlStore, httpClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := buildRunner(cfg, sqlStore, pinger, logger)
	n, err := r.Sweep(ctx, time.Now().UTC())
	if err != nil {
		logger.Error("sweep failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("expiry sweep deactivated %d postings\n", n)
	return nil
}
