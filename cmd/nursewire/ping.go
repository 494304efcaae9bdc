package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nursewire/nursewire/internal/model"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Notification side-channel subcommands",
}

var pingTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test batch through the configured ping channel",
	RunE:  runPingTest,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.AddCommand(pingTestCmd)
}

func runPingTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if !cfg.Ping.Enabled() {
		logger.Error("ping test requires ping.endpoint to be configured")
		os.Exit(1)
	}

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	pinger := setupPinger(cfg, sqlStore, httpClient, logger)

	testURL := "https://nursewire.example.com/jobs/ping-test"
	if err := pinger.Ping(context.Background(), []string{testURL}, model.PingUpdate); err != nil {
		logger.Error("test ping failed", "error", err)
		os.Exit(1)
	}

	logger.Info("test ping sent successfully", "url", testURL)
	return nil
}
