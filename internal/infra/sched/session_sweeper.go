package sched

import (
	"context"
	"time"

	"gifts-buyer/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Sweeper is implemented by session stores that expire entries lazily.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// SessionSweeper periodically evicts idle operator sessions.
type SessionSweeper struct {
	interval time.Duration
	store    Sweeper
	log      *zerolog.Logger
}

func NewSessionSweeper(interval time.Duration, store Sweeper, logger *zerolog.Logger) *SessionSweeper {
	compLog := logger.With().Str("component", "SessionSweeper").Logger()
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{interval: interval, store: store, log: &compLog}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting session sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session sweeper")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.store.Sweep(ctx)
			if err != nil {
				metrics.IncJobRun("session_sweep", "failed")
				w.log.Error().Err(err).Msg("session sweep failed")
				continue
			}
			metrics.IncJobRun("session_sweep", "ok")
			if n > 0 {
				w.log.Info().Int("count", n).Msg("expired sessions removed")
			}
		}
	}
}
