package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"
	"gifts-buyer/internal/infra/metrics"
	"gifts-buyer/internal/infra/worker"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Notification is one of the status events sent to the monitoring destination.
type Notification interface{ kind() string }

type PeerIDError struct{}

type GenericError struct{ Err error }

type BalanceError struct {
	GiftID  int64
	Price   int64
	Balance int64
}

// RangeError reports a gift no range accepted. Supply is the remaining supply, 0 when unknown.
type RangeError struct {
	GiftID int64
	Price  int64
	Supply int64
}

type PurchaseSuccess struct {
	Current   int
	Total     int
	GiftID    int64
	Recipient model.Recipient
}

type PartialPurchase struct {
	GiftID        int64
	Purchased     int
	Requested     int
	RemainingCost int64
	Balance       int64
}

type SkipSummary struct {
	SoldOut       int
	NonLimited    int
	NonUpgradable int
}

type StartMessage struct {
	Balance int64
	Ranges  []model.GiftRange
}

func (PeerIDError) kind() string     { return "peer_id_error" }
func (GenericError) kind() string    { return "error" }
func (BalanceError) kind() string    { return "balance_error" }
func (RangeError) kind() string      { return "range_error" }
func (PurchaseSuccess) kind() string { return "purchase_success" }
func (PartialPurchase) kind() string { return "partial_purchase" }
func (SkipSummary) kind() string     { return "skip_summary" }
func (StartMessage) kind() string    { return "start" }

// Compose renders n. ok is false when there is nothing worth sending.
func Compose(tr adapter.Translator, n Notification) (text string, ok bool) {
	switch v := n.(type) {
	case PeerIDError:
		return tr.T("peer_id_error"), true
	case GenericError:
		msg := "unknown"
		if v.Err != nil {
			msg = v.Err.Error()
		}
		return tr.T("error_message", "error", msg), true
	case BalanceError:
		return tr.T("balance_error",
			"gift_id", v.GiftID,
			"gift_price", humanize.Comma(v.Price),
			"current_balance", humanize.Comma(v.Balance),
		), true
	case RangeError:
		supply := ""
		if v.Supply > 0 {
			supply = " | " + humanize.Comma(v.Supply) + " " + tr.T("available")
		}
		return tr.T("range_error",
			"gift_id", v.GiftID,
			"price", humanize.Comma(v.Price),
			"supply_text", supply,
		), true
	case PurchaseSuccess:
		return tr.T("success_message",
			"current", v.Current,
			"total", v.Total,
			"gift_id", v.GiftID,
			"recipient", v.Recipient.Display(),
		), true
	case PartialPurchase:
		return tr.T("partial_purchase",
			"gift_id", v.GiftID,
			"purchased", v.Purchased,
			"requested", v.Requested,
			"remaining_cost", humanize.Comma(v.RemainingCost),
			"current_balance", humanize.Comma(v.Balance),
		), true
	case SkipSummary:
		lines := []string{tr.T("skip_summary_header")}
		if v.SoldOut > 0 {
			lines = append(lines, tr.T("sold_out_item", "count", v.SoldOut))
		}
		if v.NonLimited > 0 {
			lines = append(lines, tr.T("non_limited_item", "count", v.NonLimited))
		}
		if v.NonUpgradable > 0 {
			lines = append(lines, tr.T("non_upgradable_item", "count", v.NonUpgradable))
		}
		if len(lines) == 1 {
			return "", false
		}
		return strings.Join(lines, "\n"), true
	case StartMessage:
		return tr.T("start_message",
			"language", tr.DisplayName(),
			"locale", tr.Lang(),
			"balance", humanize.Comma(v.Balance),
			"ranges", DescribeRanges(tr, v.Ranges),
		), true
	}
	return "", false
}

// NotificationForPurchaseError maps a purchase failure to the notification that describes it.
func NotificationForPurchaseError(err error) Notification {
	if errors.Is(err, domain.ErrPeerInvalid) {
		return PeerIDError{}
	}
	return GenericError{Err: err}
}

// Compile-time check
var _ NotificationDispatcher = (*Dispatcher)(nil)

type NotificationDispatcher interface {
	// Notify delivers n synchronously, bounded by the send timeout. Failures are logged only.
	Notify(ctx context.Context, n Notification)
	// Enqueue hands n to the worker pool and returns immediately.
	Enqueue(n Notification)
}

// Dispatcher sends notifications to the monitoring destination at most once each.
type Dispatcher struct {
	messenger adapter.Messenger
	tr        adapter.Translator
	dest      model.Destination
	timeout   time.Duration
	limiter   *rate.Limiter
	pool      *worker.Pool
	log       *zerolog.Logger
}

type DispatcherOptions struct {
	SendTimeout   time.Duration
	RatePerSecond float64
	// Pool runs Enqueue deliveries. When nil Enqueue delivers in a new goroutine.
	Pool *worker.Pool
}

func NewDispatcher(messenger adapter.Messenger, tr adapter.Translator, dest model.Destination, opts DispatcherOptions, logger *zerolog.Logger) *Dispatcher {
	l := logger.With().Str("component", "NotificationDispatcher").Logger()
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 5 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
		burst = max(1, int(opts.RatePerSecond))
	}
	return &Dispatcher{
		messenger: messenger,
		tr:        tr,
		dest:      dest,
		timeout:   opts.SendTimeout,
		limiter:   rate.NewLimiter(limit, burst),
		pool:      opts.Pool,
		log:       &l,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	kind := n.kind()
	if d.dest.IsZero() {
		metrics.IncNotification(kind, "no_destination")
		d.log.Debug().Str("kind", kind).Msg("no monitoring destination; notification dropped")
		return
	}
	text, ok := Compose(d.tr, n)
	if !ok {
		metrics.IncNotification(kind, "empty")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.limiter.Wait(ctx); err != nil {
		metrics.IncNotification(kind, "throttled")
		d.log.Warn().Err(err).Str("kind", kind).Msg("notification dropped by rate limiter")
		return
	}
	err := d.messenger.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:          d.dest.ChatID,
		ChannelUsername: d.dest.Username,
		Text:            text,
	})
	if err != nil {
		metrics.IncNotification(kind, "failed")
		d.log.Error().Err(err).Str("kind", kind).Str("destination", d.dest.String()).Msg("notification delivery failed")
		return
	}
	metrics.IncNotification(kind, "sent")
}

func (d *Dispatcher) Enqueue(n Notification) {
	task := func(ctx context.Context) error {
		d.Notify(ctx, n)
		return nil
	}
	if d.pool == nil {
		go func() { _ = task(context.Background()) }()
		return
	}
	if err := d.pool.Submit(task); err != nil {
		metrics.IncNotification(n.kind(), "queue_full")
		d.log.Warn().Err(err).Str("kind", n.kind()).Msg("notification dropped")
	}
}
