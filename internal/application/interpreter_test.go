//go:build !integration

package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"
	"gifts-buyer/internal/infra/i18n"
	"gifts-buyer/internal/infra/memory"
	"gifts-buyer/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// ---- mocks ----

type MockMessenger struct {
	mu   sync.Mutex
	Sent []adapter.SendMessageParams

	SendMessageFunc func(ctx context.Context, params adapter.SendMessageParams) error
}

func (m *MockMessenger) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, params)
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, params)
	}
	return nil
}

func (m *MockMessenger) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return ""
	}
	return m.Sent[len(m.Sent)-1].Text
}

func (m *MockMessenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = nil
}

type MockRangeWriter struct {
	Writes   []string
	WriteErr error
}

func (m *MockRangeWriter) WriteRanges(ctx context.Context, encoded string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Writes = append(m.Writes, encoded)
	return nil
}

type MockPurchaser struct {
	Calls        []string
	PurchaseFunc func(ctx context.Context, r model.Recipient, giftID int64, qty int) error
}

func (m *MockPurchaser) Purchase(ctx context.Context, r model.Recipient, giftID int64, qty int) error {
	m.Calls = append(m.Calls, r.String())
	if m.PurchaseFunc != nil {
		return m.PurchaseFunc(ctx, r, giftID, qty)
	}
	return nil
}

type MockCatalogFetcher struct {
	Items []model.CatalogItem
	Err   error
}

func (m *MockCatalogFetcher) FetchCatalog(ctx context.Context) ([]model.CatalogItem, error) {
	return m.Items, m.Err
}

type MockLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

func (m *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return m.AllowFunc(ctx, key, limit, window)
}

// ---- fixture ----

const operatorID int64 = 5001

type fixture struct {
	tr        *i18n.Translator
	messenger *MockMessenger
	writer    *MockRangeWriter
	purchaser *MockPurchaser
	fetcher   *MockCatalogFetcher
	sessions  *memory.SessionRepo
	ranges    *usecase.RangeStore
	interp    *Interpreter
}

func newFixture(t *testing.T, initialRanges string) *fixture {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	require.NoError(t, err)
	initial, err := usecase.ParseRanges(initialRanges)
	require.NoError(t, err)

	f := &fixture{
		tr:        tr,
		messenger: &MockMessenger{},
		writer:    &MockRangeWriter{},
		purchaser: &MockPurchaser{},
		fetcher:   &MockCatalogFetcher{Items: []model.CatalogItem{{ID: 42, Price: 100, TotalSupply: 10, RemainingSupply: 3}}},
		sessions:  memory.NewSessionRepo(time.Hour),
	}
	f.ranges = usecase.NewRangeStore(initial, f.writer, newTestLogger())
	gate := usecase.NewAuthorizationGate(model.Destination{}, nil, f.ranges.List, newTestLogger())
	catalog := usecase.NewCatalogCache(f.fetcher, time.Hour, newTestLogger())
	f.interp = NewInterpreter(gate, f.sessions, f.ranges, catalog, f.purchaser, f.messenger, tr, nil,
		InterpreterOptions{SendTimeout: time.Second}, newTestLogger())
	return f
}

func (f *fixture) send(text string) {
	f.interp.Handle(context.Background(), model.InboundMessage{
		SenderID: operatorID,
		ChatID:   operatorID,
		Origin:   model.OriginDirect,
		Text:     text,
	})
}

func (f *fixture) state(t *testing.T) model.State {
	t.Helper()
	s, err := f.sessions.GetSession(context.Background(), operatorID)
	require.NoError(t, err)
	if s == nil {
		return ""
	}
	return s.State
}

// ---- tests ----

func TestInterpreter_EditRange(t *testing.T) {
	f := newFixture(t, "1000-5000:500000x1:alice,123456")

	f.send("/r1")
	assert.Equal(t, model.StateEditRangeInput, f.state(t))
	assert.Equal(t, f.tr.T("enter_new_range_format"), f.messenger.Last())

	f.send("10-20:0x2:bob")
	assert.Equal(t, model.State(""), f.state(t))
	assert.Equal(t, []string{"10-20:0x2:bob"}, f.writer.Writes)
	assert.Equal(t, "10-20:0x2:bob", usecase.FormatRanges(f.ranges.List()))
	assert.True(t, strings.HasPrefix(f.messenger.Last(), "✅"), f.messenger.Last())
}

func TestInterpreter_DeleteOutOfRange(t *testing.T) {
	f := newFixture(t, "1-2:0x1:a;3-4:0x1:b;5-6:0x1:c")

	f.send("/d")
	require.Equal(t, model.StateDeleteRange, f.state(t))

	f.send("/d5")
	assert.Equal(t, f.tr.T("invalid_range_number"), f.messenger.Last())
	assert.Empty(t, f.writer.Writes)
	assert.Equal(t, 3, f.ranges.Count())
	assert.Equal(t, model.State(""), f.state(t))
}

func TestInterpreter_DeleteTwice(t *testing.T) {
	f := newFixture(t, "1-2:0x1:a")

	f.send("/d1")
	assert.Equal(t, 0, f.ranges.Count())
	f.send("/d1")
	assert.Equal(t, f.tr.T("invalid_range_number"), f.messenger.Last())
	assert.Len(t, f.writer.Writes, 1)
}

func TestInterpreter_AddRange(t *testing.T) {
	t.Run("invalid text reports the reason", func(t *testing.T) {
		f := newFixture(t, "")
		f.send("/a")
		f.send("1-2:nope")
		assert.Contains(t, f.messenger.Last(), "❌")
		assert.Empty(t, f.writer.Writes)
		assert.Equal(t, model.State(""), f.state(t))
	})

	t.Run("persist failure is surfaced", func(t *testing.T) {
		f := newFixture(t, "")
		f.writer.WriteErr = errors.New("disk full")
		f.send("/a")
		f.send("1-2:0x1:a")
		assert.Equal(t, f.tr.T("range_save_failed"), f.messenger.Last())
		assert.Equal(t, 0, f.ranges.Count())
	})
}

func TestInterpreter_PurchaseFlow(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t, "")
		f.send("/g")
		f.send("42")
		assert.Equal(t, model.StateAwaitingQuantity, f.state(t))
		f.send("3")
		assert.Equal(t, model.StateAwaitingRecipient, f.state(t))
		f.send("carol")

		assert.Equal(t, []string{"carol"}, f.purchaser.Calls)
		assert.Equal(t, f.tr.T("purchase_success", "recipient", "@carol"), f.messenger.Last())
		assert.Equal(t, model.State(""), f.state(t))
	})

	t.Run("failure still clears the session", func(t *testing.T) {
		f := newFixture(t, "")
		f.purchaser.PurchaseFunc = func(ctx context.Context, r model.Recipient, giftID int64, qty int) error {
			return domain.ErrPeerInvalid
		}
		f.send("/g")
		f.send("42")
		f.send("3")
		f.send("carol")

		assert.Equal(t, f.tr.T("purchase_failed", "error", domain.ErrPeerInvalid.Error()), f.messenger.Last())
		assert.Equal(t, model.State(""), f.state(t))
	})

	t.Run("unknown gift id keeps prompting", func(t *testing.T) {
		f := newFixture(t, "")
		f.send("/g")
		f.send("7")
		assert.Equal(t, f.tr.T("gift_id_invalid"), f.messenger.Last())
		assert.Equal(t, model.StateAwaitingGiftID, f.state(t))
	})
}

func TestInterpreter_SessionsAreIsolated(t *testing.T) {
	f := newFixture(t, "")
	f.send("/a")

	f.interp.Handle(context.Background(), model.InboundMessage{SenderID: 9, ChatID: 9, Origin: model.OriginDirect, Text: "1-2:0x1:x"})

	assert.Empty(t, f.writer.Writes, "operator 9 has no open session")
	assert.Equal(t, model.StateAddRange, f.state(t))
}

func TestInterpreter_ListCatalog(t *testing.T) {
	f := newFixture(t, "")
	f.send("/g")
	f.messenger.Reset()

	f.send("/l")

	require.Len(t, f.messenger.Sent, 1)
	assert.Contains(t, f.messenger.Sent[0].Text, "[42]")
	assert.Equal(t, model.StateAwaitingGiftID, f.state(t), "/l must not cancel the purchase flow")

	f.fetcher.Err = errors.New("down")
	f.send("/l")
	assert.Equal(t, f.tr.T("catalog_unavailable"), f.messenger.Last())
}

func TestInterpreter_UnauthorizedIsIgnored(t *testing.T) {
	f := newFixture(t, "1-2:0x1:777")
	gate := usecase.NewAuthorizationGate(model.Destination{ChatID: -100}, nil, f.ranges.List, newTestLogger())
	f.interp.gate = gate

	f.send("/settings")
	assert.Empty(t, f.messenger.Sent)
	assert.Equal(t, model.State(""), f.state(t))
}

func TestInterpreter_RateLimited(t *testing.T) {
	f := newFixture(t, "")
	f.interp.limiter = &MockLimiter{AllowFunc: func(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
		return false, nil
	}}
	f.interp.opts.RateLimit = 1

	f.send("/settings")
	assert.Equal(t, f.tr.T("rate_limited"), f.messenger.Last())
	assert.Equal(t, model.State(""), f.state(t))
}

func TestInterpreter_ReplyFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, "")
	f.messenger.SendMessageFunc = func(ctx context.Context, params adapter.SendMessageParams) error {
		return errors.New("telegram down")
	}

	assert.NotPanics(t, func() { f.send("/a") })
	assert.Equal(t, model.StateAddRange, f.state(t), "session is stored even when the reply fails")
}

func TestCommandLabel(t *testing.T) {
	assert.Equal(t, "/dN", commandLabel("/d12@bot"))
	assert.Equal(t, "/settings", commandLabel("/settings"))
	assert.Equal(t, "text", commandLabel("10-20:0x1:a"))
	assert.Equal(t, "text", commandLabel(""))
}
