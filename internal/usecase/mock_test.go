//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing/fstest"

	"github.com/rs/zerolog"

	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"
	"gifts-buyer/internal/domain/ports/repository"
	"gifts-buyer/internal/infra/i18n"
	"gifts-buyer/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// newTestTranslator uses terse templates so assertions stay readable.
func newTestTranslator() *i18n.Translator {
	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte(`
peer_id_error: "peer"
error_message: "error {error}"
balance_error: "balance {gift_id} {gift_price} {current_balance}"
range_error: "range {gift_id} {price}{supply_text}"
available: "available"
success_message: "success {current}/{total} {gift_id} {recipient}"
partial_purchase: "partial {gift_id} {purchased}/{requested} {remaining_cost} {current_balance}"
skip_summary_header: "skipped"
sold_out_item: "sold_out {count}"
non_limited_item: "non_limited {count}"
non_upgradable_item: "non_upgradable {count}"
start_message: "start {language} {locale} {balance}\n{ranges}"
range_display: "{min}-{max} {supply} {recipients} x{quantity}"
range_supply_limit: "<={limit}"
range_supply_unlimited: "unlimited"
range_list_item: "#{number} {range}"
no_ranges_configured: "none"
settings_menu: "settings {count}\n{ranges}"
`)},
	}
	tr, err := i18n.NewTranslator(fsys, "en")
	if err != nil {
		panic(err)
	}
	return tr
}

// ---- Mock RangeWriter ----

type MockRangeWriter struct {
	mu       sync.Mutex
	Writes   []string
	WriteErr error
}

var _ repository.RangeWriter = (*MockRangeWriter)(nil)

func (m *MockRangeWriter) WriteRanges(ctx context.Context, encoded string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Writes = append(m.Writes, encoded)
	return nil
}

func (m *MockRangeWriter) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Writes) == 0 {
		return ""
	}
	return m.Writes[len(m.Writes)-1]
}

// ---- Mock Messenger ----

type MockMessenger struct {
	mu   sync.Mutex
	Sent []adapter.SendMessageParams

	SendMessageFunc func(ctx context.Context, params adapter.SendMessageParams) error
}

var _ adapter.Messenger = (*MockMessenger)(nil)

func (m *MockMessenger) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, params); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, params)
	return nil
}

func (m *MockMessenger) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Sent))
	for i, p := range m.Sent {
		out[i] = p.Text
	}
	return out
}

// ---- Mock Purchaser / BalanceReader / CatalogFetcher ----

type purchaseCall struct {
	Recipient model.Recipient
	GiftID    int64
	Quantity  int
}

type MockPurchaser struct {
	mu    sync.Mutex
	Calls []purchaseCall

	PurchaseFunc func(ctx context.Context, recipient model.Recipient, giftID int64, quantity int) error
}

var _ adapter.Purchaser = (*MockPurchaser)(nil)

func (m *MockPurchaser) Purchase(ctx context.Context, recipient model.Recipient, giftID int64, quantity int) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, purchaseCall{Recipient: recipient, GiftID: giftID, Quantity: quantity})
	m.mu.Unlock()
	if m.PurchaseFunc != nil {
		return m.PurchaseFunc(ctx, recipient, giftID, quantity)
	}
	return nil
}

type MockBalance struct {
	Balance int64
	Err     error
}

var _ adapter.BalanceReader = (*MockBalance)(nil)

func (m *MockBalance) StarBalance(ctx context.Context) (int64, error) { return m.Balance, m.Err }

type MockCatalogFetcher struct {
	Calls int
	Items []model.CatalogItem
	Err   error
}

var _ adapter.CatalogFetcher = (*MockCatalogFetcher)(nil)

func (m *MockCatalogFetcher) FetchCatalog(ctx context.Context) ([]model.CatalogItem, error) {
	m.Calls++
	return m.Items, m.Err
}

// ---- Recording NotificationDispatcher ----

type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []usecase.Notification
}

var _ usecase.NotificationDispatcher = (*RecordingNotifier)(nil)

func (r *RecordingNotifier) Notify(ctx context.Context, n usecase.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, n)
}

func (r *RecordingNotifier) Enqueue(n usecase.Notification) { r.Notify(context.Background(), n) }

var errBoom = errors.New("boom")

func mustRanges(text string) []model.GiftRange {
	rs, err := usecase.ParseRanges(text)
	if err != nil {
		panic(err)
	}
	return rs
}
