// Package scheduler wires up the cron entries that periodically run every
// enabled employer pipeline and the independent expiry sweep.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nursewire/nursewire/internal/config"
	"github.com/nursewire/nursewire/internal/runner"
)

// Scheduler owns the daemon loop: a scrape cycle over all employers on one
// cron entry, the time-based expiry sweep on another.
type Scheduler struct {
	runner         *runner.Runner
	employers      []config.EmployerConfig
	scrapeInterval time.Duration
	sweepInterval  time.Duration
	cron           *cron.Cron
	logger         *slog.Logger
}

// New creates a scheduler over the enabled employers.
func New(r *runner.Runner, employers []config.EmployerConfig, scrapeInterval, sweepInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:         r,
		employers:      employers,
		scrapeInterval: scrapeInterval,
		sweepInterval:  sweepInterval,
		cron:           cron.New(),
		logger:         logger,
	}
}

// Run registers the cron entries, fires one immediate scrape cycle so the
// board is fresh without waiting for the first tick, and blocks until ctx
// is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"scrape_interval", s.scrapeInterval.String(),
		"sweep_interval", s.sweepInterval.String(),
		"employers", len(s.employers),
	)

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.scrapeInterval), func() {
		s.scrapeAll(ctx)
	}); err != nil {
		return fmt.Errorf("registering scrape cron: %w", err)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.sweepInterval), func() {
		s.sweep(ctx)
	}); err != nil {
		return fmt.Errorf("registering sweep cron: %w", err)
	}

	s.cron.Start()

	s.scrapeAll(ctx)

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}

// scrapeAll runs each enabled employer sequentially with a small pause in
// between. Per-employer pacing inside a run comes from the rate-limited
// fetcher; this pause is just politeness between sites.
func (s *Scheduler) scrapeAll(ctx context.Context) {
	for i, emp := range s.employers {
		if ctx.Err() != nil {
			return
		}
		if !emp.Enabled {
			continue
		}

		if _, err := s.runner.Run(ctx, emp, 0); err != nil {
			s.logger.Error("scrape run failed",
				"employer", emp.Slug,
				"error", err,
			)
		}

		if i < len(s.employers)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(1 * time.Second):
			}
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	n, err := s.runner.Sweep(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("expiry sweep failed", "error", err)
		return
	}
	s.logger.Info("expiry sweep complete", "deactivated", n)
}
