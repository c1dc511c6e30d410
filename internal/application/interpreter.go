package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"
	"gifts-buyer/internal/domain/ports/repository"
	"gifts-buyer/internal/infra/logging"
	"gifts-buyer/internal/infra/metrics"
	red "gifts-buyer/internal/infra/redis"
	"gifts-buyer/internal/usecase"
)

// Interpreter feeds authorized operator messages through usecase.Transition and executes
// the returned effects. Messages are handled one at a time.
type Interpreter struct {
	mu sync.Mutex

	gate      usecase.AuthorizationGate
	sessions  repository.SessionRepository
	ranges    usecase.RangeUseCase
	catalog   usecase.CatalogUseCase
	purchaser adapter.Purchaser
	messenger adapter.Messenger
	tr        adapter.Translator
	limiter   CommandLimiter
	opts      InterpreterOptions
	now       func() time.Time
	log       *zerolog.Logger
}

func NewInterpreter(
	gate usecase.AuthorizationGate,
	sessions repository.SessionRepository,
	ranges usecase.RangeUseCase,
	catalog usecase.CatalogUseCase,
	purchaser adapter.Purchaser,
	messenger adapter.Messenger,
	tr adapter.Translator,
	limiter CommandLimiter,
	opts InterpreterOptions,
	logger *zerolog.Logger,
) *Interpreter {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 5 * time.Second
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	l := logger.With().Str("component", "Interpreter").Logger()
	return &Interpreter{
		gate:      gate,
		sessions:  sessions,
		ranges:    ranges,
		catalog:   catalog,
		purchaser: purchaser,
		messenger: messenger,
		tr:        tr,
		limiter:   limiter,
		opts:      opts,
		now:       time.Now,
		log:       &l,
	}
}

// Handle processes one inbound message. Errors are reported to the operator or logged,
// never returned.
func (i *Interpreter) Handle(ctx context.Context, msg model.InboundMessage) {
	if !i.gate.Permitted(msg) {
		return
	}
	operatorID := msg.OperatorID()
	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithOperatorID(ctx, operatorID)
	ctx = logging.WithChatID(ctx, msg.ChatID)
	log := logging.With(ctx, i.log)
	defer logging.TraceDuration(log, "Interpreter.Handle")()

	metrics.IncTelegramCommand(commandLabel(msg.Text))
	if !i.allow(ctx, log, operatorID) {
		metrics.IncRateLimitTriggered()
		i.reply(ctx, log, msg, i.tr.T("rate_limited"))
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	cur, err := i.sessions.GetSession(ctx, operatorID)
	if err != nil {
		log.Error().Err(err).Msg("loading session failed; treating operator as idle")
		cur = nil
	}

	env := usecase.Env{
		RangeCount: i.ranges.Count(),
		KnownGift:  i.knownGift(ctx, log),
	}
	next, effects := usecase.Transition(operatorID, cur, msg.Text, env)
	i.store(ctx, log, operatorID, cur, next)

	for _, eff := range effects {
		i.execute(ctx, log, msg, eff)
	}
}

func (i *Interpreter) allow(ctx context.Context, log *zerolog.Logger, operatorID int64) bool {
	if i.limiter == nil || i.opts.RateLimit <= 0 {
		return true
	}
	ok, err := i.limiter.Allow(ctx, red.OperatorCommandKey(operatorID), i.opts.RateLimit, i.opts.RateWindow)
	if err != nil {
		// fail open: a broken limiter must not lock the operator out
		log.Warn().Err(err).Msg("rate limiter error")
		return true
	}
	return ok
}

// knownGift validates ids against the cached catalog, refreshing it when stale.
func (i *Interpreter) knownGift(ctx context.Context, log *zerolog.Logger) func(int64) bool {
	return func(id int64) bool {
		if _, err := i.catalog.Snapshot(ctx); err != nil {
			log.Warn().Err(err).Msg("catalog unavailable for gift id check")
		}
		return i.catalog.Known(id)
	}
}

// store persists next before any effect runs so a crash mid-effect never replays input.
func (i *Interpreter) store(ctx context.Context, log *zerolog.Logger, operatorID int64, cur, next *model.Session) {
	from, to := stateLabel(cur), stateLabel(next)
	if from != to {
		metrics.IncSessionTransition(from, to)
		log.Debug().Str("from", from).Str("to", to).Msg("session transition")
	}
	if next == nil {
		if cur == nil {
			return
		}
		if err := i.sessions.ClearSession(ctx, operatorID); err != nil {
			log.Error().Err(err).Msg("clearing session failed")
		}
		return
	}
	next.UpdatedAt = i.now()
	if err := i.sessions.SaveSession(ctx, next); err != nil {
		log.Error().Err(err).Msg("saving session failed")
	}
}

func (i *Interpreter) execute(ctx context.Context, log *zerolog.Logger, msg model.InboundMessage, eff usecase.Effect) {
	switch e := eff.(type) {
	case usecase.Reply:
		i.reply(ctx, log, msg, i.tr.T(e.Key, e.Args...))

	case usecase.ShowSettings:
		i.reply(ctx, log, msg, usecase.SettingsSummary(i.tr, i.ranges.List()))

	case usecase.ShowRangeList:
		i.reply(ctx, log, msg, i.rangeList(e.Purpose))

	case usecase.AddRange:
		r, err := i.ranges.Add(ctx, e.Text)
		i.replyMutation(ctx, log, msg, "range_added", r, err)

	case usecase.EditRange:
		r, err := i.ranges.Edit(ctx, e.Index, e.Text)
		i.replyMutation(ctx, log, msg, "range_edited", r, err)

	case usecase.DeleteRange:
		r, err := i.ranges.Delete(ctx, e.Index)
		i.replyMutation(ctx, log, msg, "range_deleted", r, err)

	case usecase.ListCatalog:
		items, err := i.catalog.Refresh(ctx)
		if err != nil {
			i.reply(ctx, log, msg, i.tr.T("catalog_unavailable"))
			return
		}
		for _, chunk := range FormatCatalog(i.tr, items) {
			i.reply(ctx, log, msg, chunk)
		}

	case usecase.Purchase:
		err := i.purchaser.Purchase(ctx, e.Recipient, e.GiftID, e.Quantity)
		if err != nil {
			metrics.IncPurchase("failed")
			log.Error().Err(err).Int64("gift_id", e.GiftID).Str("recipient", e.Recipient.Display()).Msg("manual purchase failed")
			i.reply(ctx, log, msg, i.tr.T("purchase_failed", "error", purchaseReason(err)))
			return
		}
		metrics.IncPurchase("ok")
		log.Info().Int64("gift_id", e.GiftID).Int("quantity", e.Quantity).Str("recipient", e.Recipient.Display()).Msg("manual purchase done")
		i.reply(ctx, log, msg, i.tr.T("purchase_success", "recipient", e.Recipient.Display()))

	default:
		log.Error().Msgf("unhandled effect %T", eff)
	}
}

func (i *Interpreter) rangeList(purpose usecase.ListPurpose) string {
	ranges := i.ranges.List()
	if len(ranges) == 0 {
		if purpose == usecase.ListForEdit {
			return i.tr.T("no_ranges_to_edit")
		}
		return i.tr.T("no_ranges_to_delete")
	}
	key := "delete_menu"
	if purpose == usecase.ListForEdit {
		key = "edit_menu"
	}
	return i.tr.T(key, "ranges_list", usecase.DescribeRanges(i.tr, ranges))
}

func (i *Interpreter) replyMutation(ctx context.Context, log *zerolog.Logger, msg model.InboundMessage, okKey string, r model.GiftRange, err error) {
	if err == nil {
		i.reply(ctx, log, msg, i.tr.T(okKey, "range_info", usecase.DescribeRange(i.tr, r)))
		return
	}
	var pe *usecase.ParseError
	switch {
	case errors.As(err, &pe):
		i.reply(ctx, log, msg, i.tr.T("invalid_range_format", "reason", pe.Reason))
	case errors.Is(err, domain.ErrRangeIndexOutOfRange):
		i.reply(ctx, log, msg, i.tr.T("invalid_range_number"))
	case errors.Is(err, domain.ErrPersistRanges):
		i.reply(ctx, log, msg, i.tr.T("range_save_failed"))
	default:
		log.Error().Err(err).Msg("range mutation failed")
		i.reply(ctx, log, msg, i.tr.T("error_message", "error", err.Error()))
	}
}

// reply answers in the chat the message came from. Delivery failures are logged only.
func (i *Interpreter) reply(ctx context.Context, log *zerolog.Logger, msg model.InboundMessage, text string) {
	ctx, cancel := context.WithTimeout(ctx, i.opts.SendTimeout)
	defer cancel()
	err := i.messenger.SendMessage(ctx, adapter.SendMessageParams{ChatID: msg.ChatID, Text: text})
	if err != nil {
		log.Warn().Err(err).Msg("reply delivery failed")
	}
}

func purchaseReason(err error) string {
	if errors.Is(err, domain.ErrPeerInvalid) {
		return domain.ErrPeerInvalid.Error()
	}
	return err.Error()
}

func stateLabel(s *model.Session) string {
	if s == nil {
		return "idle"
	}
	return string(s.State)
}

// commandLabel keeps metric cardinality low: "/d12@bot" becomes "/dN", free text "text".
func commandLabel(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "text"
	}
	word := fields[0]
	if at := strings.Index(word, "@"); at > 0 {
		word = word[:at]
	}
	trimmed := strings.TrimRight(word, "0123456789")
	if trimmed != word {
		return trimmed + "N"
	}
	return word
}
