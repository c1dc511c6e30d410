package usecase

import (
	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ AuthorizationGate = (*authGate)(nil)

type AuthorizationGate interface {
	// Permitted decides whether an inbound message may reach the command interpreter.
	Permitted(msg model.InboundMessage) bool
}

type authGate struct {
	dest      model.Destination
	operators map[int64]struct{}
	ranges    func() []model.GiftRange
	log       *zerolog.Logger
}

// NewAuthorizationGate builds the gate. ranges is read on every direct message so that
// recipients added at runtime are authorized immediately.
func NewAuthorizationGate(dest model.Destination, operators []int64, ranges func() []model.GiftRange, logger *zerolog.Logger) *authGate {
	l := logger.With().Str("component", "AuthorizationGate").Logger()
	ops := make(map[int64]struct{}, len(operators))
	for _, id := range operators {
		ops[id] = struct{}{}
	}
	return &authGate{dest: dest, operators: ops, ranges: ranges, log: &l}
}

func (g *authGate) Permitted(msg model.InboundMessage) bool {
	var ok bool
	switch msg.Origin {
	case model.OriginBroadcast:
		ok = g.dest.Matches(msg.ChatID, msg.ChatUsername)
	default:
		ok = g.permitDirect(msg.SenderID)
	}
	if !ok {
		metrics.IncAuthDenied(msg.Origin.String())
		g.log.Debug().
			Str("origin", msg.Origin.String()).
			Int64("sender_id", msg.SenderID).
			Int64("chat_id", msg.ChatID).
			Msg("message ignored: not authorized")
	}
	return ok
}

func (g *authGate) permitDirect(senderID int64) bool {
	// Without a monitoring destination the bot runs unrestricted.
	if g.dest.IsZero() {
		return true
	}
	if senderID == 0 {
		return false
	}
	if _, ok := g.operators[senderID]; ok {
		return true
	}
	if g.ranges == nil {
		return false
	}
	for _, r := range g.ranges() {
		if r.HasRecipientID(senderID) {
			return true
		}
	}
	return false
}
