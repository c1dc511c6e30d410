//go:build !integration

package memory

import (
	"context"
	"testing"
	"time"

	"gifts-buyer/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}

	t.Run("should return nil for unknown operator", func(t *testing.T) {
		repo := NewSessionRepo(time.Minute).WithClock(clock.Now)
		got, err := repo.GetSession(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("should keep sessions per operator", func(t *testing.T) {
		repo := NewSessionRepo(time.Minute).WithClock(clock.Now)
		a := model.NewSession(1, model.StateAddRange)
		b := model.NewSession(2, model.StateAwaitingGiftID)
		require.NoError(t, repo.SaveSession(ctx, a))
		require.NoError(t, repo.SaveSession(ctx, b))

		gotA, err := repo.GetSession(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, gotA)
		assert.Equal(t, model.StateAddRange, gotA.State)

		require.NoError(t, repo.ClearSession(ctx, 2))
		gotB, err := repo.GetSession(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, gotB)

		gotA, err = repo.GetSession(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, gotA, "clearing operator 2 must not touch operator 1")
	})

	t.Run("should not leak mutations of returned sessions", func(t *testing.T) {
		repo := NewSessionRepo(time.Minute).WithClock(clock.Now)
		require.NoError(t, repo.SaveSession(ctx, model.NewSession(1, model.StateAwaitingQuantity)))
		got, _ := repo.GetSession(ctx, 1)
		got.State = model.StateSettingsMenu

		again, _ := repo.GetSession(ctx, 1)
		assert.Equal(t, model.StateAwaitingQuantity, again.State)
	})

	t.Run("should expire idle sessions", func(t *testing.T) {
		repo := NewSessionRepo(time.Minute).WithClock(clock.Now)
		require.NoError(t, repo.SaveSession(ctx, model.NewSession(1, model.StateAddRange)))
		require.NoError(t, repo.SaveSession(ctx, model.NewSession(2, model.StateAddRange)))

		clock.Advance(30 * time.Second)
		got, _ := repo.GetSession(ctx, 1)
		assert.NotNil(t, got)

		clock.Advance(time.Minute)
		got, _ = repo.GetSession(ctx, 1)
		assert.Nil(t, got)

		n, err := repo.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 0, repo.Len())
	})
}
