package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/nursewire/nursewire/internal/classify"
	"github.com/nursewire/nursewire/internal/config"
	"github.com/nursewire/nursewire/internal/fetch"
	"github.com/nursewire/nursewire/internal/model"
	"github.com/nursewire/nursewire/internal/notify"
	"github.com/nursewire/nursewire/internal/ratelimit"
	"github.com/nursewire/nursewire/internal/reconcile"
	"github.com/nursewire/nursewire/internal/retry"
	"github.com/nursewire/nursewire/internal/runner"
	"github.com/nursewire/nursewire/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "nursewire",
	Short: "RN job board ingestion engine",
	Long:  "nursewire scrapes employer career sites, classifies genuine RN postings, and keeps the job board's record set reconciled.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: NURSEWIRE_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > NURSEWIRE_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("NURSEWIRE_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.TimeOnly,
	}))
}

func openStore(cfg *config.Config, logger *slog.Logger) *store.SQLiteStore {
	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "db_path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	return s
}

// setupPinger wires the notification side channel. No endpoint configured
// means a nop pinger: the core runs identically either way.
func setupPinger(cfg *config.Config, pingLog model.PingLog, httpClient *http.Client, logger *slog.Logger) model.Pinger {
	if !cfg.Ping.Enabled() {
		return notify.NewNopPinger()
	}
	logger.Info("ping side channel enabled", "endpoint", cfg.Ping.Endpoint)
	return notify.NewHTTPPinger(
		cfg.Ping.Endpoint,
		cfg.Ping.Key,
		cfg.Ping.BatchSize,
		cfg.Ping.BatchDelay,
		cfg.Ping.TrackingWindow,
		pingLog,
		httpClient,
		logger,
	)
}

// buildRunner assembles the full pipeline: rate-limited, retrying page
// fetcher feeding the classifier, normalizer, and reconciler.
func buildRunner(cfg *config.Config, st model.Store, pinger model.Pinger, logger *slog.Logger) *runner.Runner {
	var fetcher model.PageFetcher = fetch.NewSession(cfg.RequestTimeout)
	fetcher = retry.NewFetcher(fetcher, 2, 5*time.Second, logger)
	fetcher = ratelimit.NewLimitedFetcher(fetcher, ratelimit.NewHostLimiter(cfg.RequestDelay))

	classifier := classify.New(cfg.MinDescriptionLen)
	reconciler := reconcile.New(st, cfg.ExpiryWindow, logger)

	return runner.New(st, fetcher, classifier, reconciler, pinger,
		cfg.MaxPages, cfg.EmptyPageLimit, logger)
}
