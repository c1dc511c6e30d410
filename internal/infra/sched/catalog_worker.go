package sched

import (
	"context"
	"time"

	"gifts-buyer/internal/infra/metrics"
	"gifts-buyer/internal/usecase"

	"github.com/rs/zerolog"
)

// CatalogWorker fetches the gift catalog on every tick and hands it to the buyer.
type CatalogWorker struct {
	interval time.Duration
	catalog  usecase.CatalogUseCase
	buyer    usecase.BuyerUseCase
	log      *zerolog.Logger
}

func NewCatalogWorker(interval time.Duration, catalog usecase.CatalogUseCase, buyer usecase.BuyerUseCase, logger *zerolog.Logger) *CatalogWorker {
	compLog := logger.With().Str("component", "CatalogWorker").Logger()
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &CatalogWorker{
		interval: interval,
		catalog:  catalog,
		buyer:    buyer,
		log:      &compLog,
	}
}

func (w *CatalogWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting catalog worker")
	// Run once on startup, then on every tick
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping catalog worker")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *CatalogWorker) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, w.interval+30*time.Second)
	defer cancel()

	items, err := w.catalog.Refresh(runCtx)
	if err != nil {
		metrics.IncJobRun("catalog", "failed")
		w.log.Error().Err(err).Msg("catalog refresh failed")
		return
	}
	report, err := w.buyer.ProcessSnapshot(runCtx, items)
	if err != nil {
		metrics.IncJobRun("catalog", "failed")
		w.log.Warn().Err(err).Int("purchased", report.Purchased).Msg("snapshot processed with errors")
		return
	}
	metrics.IncJobRun("catalog", "ok")
	if report.Considered > 0 {
		w.log.Info().
			Int("considered", report.Considered).
			Int("purchased", report.Purchased).
			Msg("snapshot processed")
	}
}
