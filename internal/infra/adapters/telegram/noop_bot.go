package telegram

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"
)

var (
	_ adapter.Messenger = (*NoopBotAdapter)(nil)
	_ adapter.Purchaser = (*NoopBotAdapter)(nil)
)

// NoopBotAdapter logs instead of talking to Telegram. It backs gifts.dry_run purchases and
// lets the bot run locally without a destination chat.
type NoopBotAdapter struct {
	delay time.Duration
	log   *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "NoopBot").Logger()
	return &NoopBotAdapter{delay: 100 * time.Millisecond, log: &l}
}

func (b *NoopBotAdapter) wait(ctx context.Context) error {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(b.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", params.ChatID).Str("channel", params.ChannelUsername).Str("text", params.Text).Msg("noop send")
	return nil
}

func (b *NoopBotAdapter) Purchase(ctx context.Context, recipient model.Recipient, giftID int64, quantity int) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.log.Info().Str("recipient", recipient.Display()).Int64("gift_id", giftID).Int("quantity", quantity).Msg("dry run: gift not bought")
	return nil
}
