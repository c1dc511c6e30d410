package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"gifts-buyer/internal/config"
	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"
)

var (
	_ adapter.Messenger      = (*RealBotAdapter)(nil)
	_ adapter.CatalogFetcher = (*RealBotAdapter)(nil)
	_ adapter.Purchaser      = (*RealBotAdapter)(nil)
	_ adapter.BalanceReader  = (*RealBotAdapter)(nil)
)

// InboundHandler receives operator messages decoded from updates.
type InboundHandler interface {
	Handle(ctx context.Context, msg model.InboundMessage)
}

// RealBotAdapter polls the Bot API and implements the outbound ports on top of tgbotapi.
type RealBotAdapter struct {
	bot           *tgbotapi.BotAPI
	updateWorkers int
	cancelPolling context.CancelFunc
	log           *zerolog.Logger
}

func NewRealBotAdapter(cfg *config.BotConfig, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	l := logger.With().Str("component", "TelegramBot").Logger()
	l.Info().Str("username", bot.Self.UserName).Msg("authorized on Telegram")
	return &RealBotAdapter{bot: bot, updateWorkers: cfg.Workers, log: &l}, nil
}

// Username is the bot's own username, without "@".
func (r *RealBotAdapter) Username() string { return r.bot.Self.UserName }

func (r *RealBotAdapter) StartPolling(ctx context.Context, handler InboundHandler) error {
	if handler == nil {
		return errors.New("inbound handler is nil")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "channel_post"}
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	workers := r.updateWorkers
	if workers <= 0 {
		workers = 1
	}
	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if msg, ok := ToInbound(up); ok {
						handler.Handle(ctx, msg)
					}
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// ToInbound maps private messages to direct origin and channel posts to broadcast origin.
// Everything else is ignored.
func ToInbound(up tgbotapi.Update) (model.InboundMessage, bool) {
	switch {
	case up.Message != nil:
		m := up.Message
		if m.Chat == nil || !m.Chat.IsPrivate() || m.From == nil || m.Text == "" {
			return model.InboundMessage{}, false
		}
		return model.InboundMessage{
			SenderID: m.From.ID,
			ChatID:   m.Chat.ID,
			Origin:   model.OriginDirect,
			Text:     m.Text,
		}, true
	case up.ChannelPost != nil:
		m := up.ChannelPost
		if m.Chat == nil || m.Text == "" {
			return model.InboundMessage{}, false
		}
		var sender int64
		if m.From != nil {
			sender = m.From.ID
		}
		return model.InboundMessage{
			SenderID:     sender,
			ChatID:       m.Chat.ID,
			ChatUsername: m.Chat.UserName,
			Origin:       model.OriginBroadcast,
			Text:         m.Text,
		}, true
	}
	return model.InboundMessage{}, false
}

// SendMessage addresses a public channel by username when given, otherwise the chat id.
func (r *RealBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	var msg tgbotapi.MessageConfig
	if params.ChannelUsername != "" {
		msg = tgbotapi.NewMessageToChannel(params.ChannelUsername, params.Text)
	} else {
		msg = tgbotapi.NewMessage(params.ChatID, params.Text)
	}
	msg.ParseMode = params.ParseMode
	msg.DisableWebPagePreview = true

	return r.do(ctx, func() error {
		_, err := r.bot.Send(msg)
		return err
	})
}

// do runs a blocking Bot API call and gives up when ctx ends first. tgbotapi has no
// context support, so an abandoned call still completes in the background.
func (r *RealBotAdapter) do(ctx context.Context, call func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- call() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
