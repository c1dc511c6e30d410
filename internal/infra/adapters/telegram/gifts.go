package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/domain/model"
)

// Bot API payloads for the gift methods. tgbotapi v5 predates them, so they go through MakeRequest.
type apiGift struct {
	ID               string     `json:"id"`
	Sticker          apiSticker `json:"sticker"`
	StarCount        int64      `json:"star_count"`
	UpgradeStarCount int64      `json:"upgrade_star_count"`
	TotalCount       int64      `json:"total_count"`
	RemainingCount   int64      `json:"remaining_count"`
}

type apiSticker struct {
	Emoji string `json:"emoji"`
}

type apiGifts struct {
	Gifts []apiGift `json:"gifts"`
}

type apiStarAmount struct {
	Amount int64 `json:"amount"`
}

// DecodeCatalog converts a getAvailableGifts result. Gifts with a non-numeric id are dropped.
func DecodeCatalog(raw json.RawMessage) ([]model.CatalogItem, error) {
	var payload apiGifts
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode gifts: %w", err)
	}
	items := make([]model.CatalogItem, 0, len(payload.Gifts))
	for _, g := range payload.Gifts {
		id, err := strconv.ParseInt(g.ID, 10, 64)
		if err != nil {
			continue
		}
		items = append(items, model.CatalogItem{
			ID:              id,
			Emoji:           g.Sticker.Emoji,
			Price:           g.StarCount,
			RemainingSupply: g.RemainingCount,
			TotalSupply:     g.TotalCount,
			SoldOut:         g.TotalCount > 0 && g.RemainingCount == 0,
			UpgradePrice:    g.UpgradeStarCount,
		})
	}
	return items, nil
}

func (r *RealBotAdapter) FetchCatalog(ctx context.Context) ([]model.CatalogItem, error) {
	var resp *tgbotapi.APIResponse
	err := r.do(ctx, func() error {
		var err error
		resp, err = r.bot.MakeRequest("getAvailableGifts", tgbotapi.Params{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getAvailableGifts: %w", err)
	}
	return DecodeCatalog(resp.Result)
}

// Purchase sends quantity gifts one by one. Numeric recipients are addressed as users,
// handles as "@handle" chats.
func (r *RealBotAdapter) Purchase(ctx context.Context, recipient model.Recipient, giftID int64, quantity int) error {
	params := GiftParams(recipient, giftID)
	for i := 0; i < quantity; i++ {
		err := r.do(ctx, func() error {
			_, err := r.bot.MakeRequest("sendGift", params)
			return err
		})
		if err != nil {
			return MapGiftError(err)
		}
	}
	return nil
}

func GiftParams(recipient model.Recipient, giftID int64) tgbotapi.Params {
	params := tgbotapi.Params{}
	params["gift_id"] = strconv.FormatInt(giftID, 10)
	if recipient.IsID() {
		params.AddNonZero64("user_id", recipient.ID)
	} else {
		params.AddNonEmpty("chat_id", "@"+strings.TrimPrefix(recipient.Username, "@"))
	}
	return params
}

func (r *RealBotAdapter) StarBalance(ctx context.Context) (int64, error) {
	var resp *tgbotapi.APIResponse
	err := r.do(ctx, func() error {
		var err error
		resp, err = r.bot.MakeRequest("getMyStarBalance", tgbotapi.Params{})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("getMyStarBalance: %w", err)
	}
	var amount apiStarAmount
	if err := json.Unmarshal(resp.Result, &amount); err != nil {
		return 0, fmt.Errorf("decode star balance: %w", err)
	}
	return amount.Amount, nil
}

var peerErrorMarkers = []string{"peer_id_invalid", "user not found", "chat not found", "user_id_invalid"}

// MapGiftError wraps recipient resolution failures in domain.ErrPeerInvalid and insufficient
// funds in domain.ErrInsufficientBalance.
func MapGiftError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	msg := strings.ToLower(err.Error())
	if errors.As(err, &apiErr) {
		msg = strings.ToLower(apiErr.Message)
	}
	for _, marker := range peerErrorMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", domain.ErrPeerInvalid, err)
		}
	}
	if strings.Contains(msg, "balance_too_low") || strings.Contains(msg, "not enough stars") {
		return fmt.Errorf("%w: %v", domain.ErrInsufficientBalance, err)
	}
	return err
}
