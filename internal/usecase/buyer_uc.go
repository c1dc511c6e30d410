package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"
	"gifts-buyer/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ BuyerUseCase = (*Buyer)(nil)

type BuyerUseCase interface {
	// ProcessSnapshot decides and performs purchases for gifts not seen before.
	ProcessSnapshot(ctx context.Context, items []model.CatalogItem) (BuyReport, error)
}

type BuyerOptions struct {
	OnlyUpgradable      bool
	PrioritizeLowSupply bool
}

// BuyReport summarizes one ProcessSnapshot call.
type BuyReport struct {
	Considered int
	Purchased  int
	Skipped    SkipSummary
}

// Buyer turns catalog snapshots into purchases according to the configured ranges.
type Buyer struct {
	ranges    RangeUseCase
	purchaser adapter.Purchaser
	balance   adapter.BalanceReader
	notifier  NotificationDispatcher
	opts      BuyerOptions

	mu        sync.Mutex
	processed map[int64]struct{}

	log *zerolog.Logger
}

func NewBuyer(ranges RangeUseCase, purchaser adapter.Purchaser, balance adapter.BalanceReader, notifier NotificationDispatcher, opts BuyerOptions, logger *zerolog.Logger) *Buyer {
	l := logger.With().Str("component", "Buyer").Logger()
	return &Buyer{
		ranges:    ranges,
		purchaser: purchaser,
		balance:   balance,
		notifier:  notifier,
		opts:      opts,
		processed: make(map[int64]struct{}),
		log:       &l,
	}
}

// ProcessSnapshot is not reentrant; concurrent calls are serialized.
func (b *Buyer) ProcessSnapshot(ctx context.Context, items []model.CatalogItem) (BuyReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var report BuyReport
	candidates := make([]model.CatalogItem, 0, len(items))
	for _, it := range items {
		if _, seen := b.processed[it.ID]; seen {
			continue
		}
		b.processed[it.ID] = struct{}{}
		switch {
		case it.SoldOut:
			report.Skipped.SoldOut++
		case !it.Limited():
			report.Skipped.NonLimited++
		case b.opts.OnlyUpgradable && !it.Upgradable():
			report.Skipped.NonUpgradable++
		default:
			candidates = append(candidates, it)
		}
	}
	metrics.AddGiftsSkipped("sold_out", report.Skipped.SoldOut)
	metrics.AddGiftsSkipped("non_limited", report.Skipped.NonLimited)
	metrics.AddGiftsSkipped("non_upgradable", report.Skipped.NonUpgradable)

	if b.opts.PrioritizeLowSupply {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].RemainingSupply < candidates[j].RemainingSupply
		})
	}

	var firstErr error
	for _, it := range candidates {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Considered++
		n, err := b.buyItem(ctx, it)
		report.Purchased += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	b.notifier.Notify(ctx, report.Skipped)
	return report, firstErr
}

func (b *Buyer) buyItem(ctx context.Context, it model.CatalogItem) (int, error) {
	log := b.log.With().Int64("gift_id", it.ID).Int64("price", it.Price).Int64("supply", it.RemainingSupply).Logger()

	m := b.ranges.Match(it.Price, it.RemainingSupply)
	if !m.Matched {
		metrics.IncRangeMatch("miss")
		log.Debug().Msg("no range matches gift")
		b.notifier.Notify(ctx, RangeError{GiftID: it.ID, Price: it.Price, Supply: it.RemainingSupply})
		return 0, nil
	}
	metrics.IncRangeMatch("hit")

	balance, err := b.balance.StarBalance(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reading star balance failed")
		b.notifier.Notify(ctx, GenericError{Err: err})
		return 0, err
	}
	if balance < it.Price {
		log.Warn().Int64("balance", balance).Msg("insufficient balance")
		b.notifier.Notify(ctx, BalanceError{GiftID: it.ID, Price: it.Price, Balance: balance})
		return 0, domain.ErrInsufficientBalance
	}

	total := m.Quantity * len(m.Recipients)
	purchased := 0
	for _, rec := range m.Recipients {
		for unit := 0; unit < m.Quantity; unit++ {
			if balance < it.Price {
				remaining := int64(total-purchased) * it.Price
				log.Warn().Int("purchased", purchased).Int("requested", total).Msg("balance ran out mid purchase")
				b.notifier.Notify(ctx, PartialPurchase{
					GiftID:        it.ID,
					Purchased:     purchased,
					Requested:     total,
					RemainingCost: remaining,
					Balance:       balance,
				})
				return purchased, domain.ErrInsufficientBalance
			}
			if err := b.purchaser.Purchase(ctx, rec, it.ID, 1); err != nil {
				metrics.IncPurchase("failed")
				log.Error().Err(err).Str("recipient", rec.Display()).Msg("purchase failed")
				b.notifier.Notify(ctx, NotificationForPurchaseError(err))
				if errors.Is(err, domain.ErrPeerInvalid) {
					// the remaining units for this recipient would fail the same way
					break
				}
				return purchased, err
			}
			metrics.IncPurchase("ok")
			purchased++
			balance -= it.Price
			log.Info().Str("recipient", rec.Display()).Int("current", purchased).Int("total", total).Msg("gift purchased")
			b.notifier.Notify(ctx, PurchaseSuccess{Current: purchased, Total: total, GiftID: it.ID, Recipient: rec})
		}
	}
	return purchased, nil
}
