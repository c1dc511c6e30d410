// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"gifts-buyer/internal/domain/model"
)

// SendMessageParams addresses a chat either by id or, for public channels, by username.
type SendMessageParams struct {
	ChatID          int64
	ChannelUsername string
	Text            string
	ParseMode       string
}

type Messenger interface {
	SendMessage(ctx context.Context, params SendMessageParams) error
}

// CatalogFetcher returns the current gift catalog snapshot.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) ([]model.CatalogItem, error)
}

// Purchaser buys quantity units of a gift for one recipient.
// Implementations return domain.ErrPeerInvalid when the recipient cannot be resolved.
type Purchaser interface {
	Purchase(ctx context.Context, recipient model.Recipient, giftID int64, quantity int) error
}

type BalanceReader interface {
	StarBalance(ctx context.Context) (int64, error)
}
