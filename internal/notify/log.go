package notify

import (
	"context"
	"log/slog"

	"github.com/nursewire/nursewire/internal/model"
)

// Ensure both implement model.Pinger.
var (
	_ model.Pinger = (*LogPinger)(nil)
	_ model.Pinger = (*NopPinger)(nil)
)

// LogPinger writes would-be pings to the logger. Used in dry runs and for
// ping-channel smoke tests.
type LogPinger struct {
	logger *slog.Logger
}

func NewLogPinger(logger *slog.Logger) *LogPinger {
	return &LogPinger{logger: logger}
}

func (p *LogPinger) Ping(ctx context.Context, urls []string, kind model.PingKind) error {
	for _, u := range urls {
		p.logger.Info("ping", "kind", kind, "url", u)
	}
	return nil
}

// NopPinger is wired when no ping endpoint is configured. Absence of the
// side channel is a configuration state, not a runtime probe.
type NopPinger struct{}

func NewNopPinger() *NopPinger { return &NopPinger{} }

func (p *NopPinger) Ping(ctx context.Context, urls []string, kind model.PingKind) error {
	return nil
}
