//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/usecase"
)

func TestRangeStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should add and persist the whole list", func(t *testing.T) {
		// 1. Arrange
		writer := &MockRangeWriter{}
		store := usecase.NewRangeStore(mustRanges("1-2:0x1:a"), writer, newTestLogger())

		// 2. Act
		r, err := store.Add(ctx, "10-20:0x2:@bob")

		// 3. Assert
		require.NoError(t, err)
		assert.Equal(t, "10-20:0x2:bob", usecase.FormatRange(r))
		assert.Equal(t, 2, store.Count())
		assert.Equal(t, "1-2:0x1:a;10-20:0x2:bob", writer.Last())
	})

	t.Run("should edit in place", func(t *testing.T) {
		writer := &MockRangeWriter{}
		store := usecase.NewRangeStore(mustRanges("1-2:0x1:a;3-4:0x1:b"), writer, newTestLogger())

		_, err := store.Edit(ctx, 1, "30-40:5x3:c")
		require.NoError(t, err)
		assert.Equal(t, "1-2:0x1:a;30-40:5x3:c", writer.Last())
	})

	t.Run("should reject malformed text without writing", func(t *testing.T) {
		writer := &MockRangeWriter{}
		store := usecase.NewRangeStore(mustRanges("1-2:0x1:a"), writer, newTestLogger())

		_, err := store.Add(ctx, "garbage")
		assert.True(t, errors.Is(err, domain.ErrInvalidRangeFormat))
		_, err = store.Edit(ctx, 0, "1-2:0x1")
		assert.True(t, errors.Is(err, domain.ErrInvalidRangeFormat))
		assert.Empty(t, writer.Writes)
		assert.Equal(t, 1, store.Count())
	})

	t.Run("should reject out of range indexes", func(t *testing.T) {
		writer := &MockRangeWriter{}
		store := usecase.NewRangeStore(mustRanges("1-2:0x1:a"), writer, newTestLogger())

		_, err := store.Edit(ctx, 1, "1-2:0x1:a")
		assert.True(t, errors.Is(err, domain.ErrRangeIndexOutOfRange))
		_, err = store.Delete(ctx, -1)
		assert.True(t, errors.Is(err, domain.ErrRangeIndexOutOfRange))
		assert.Empty(t, writer.Writes)
	})

	t.Run("should return index error on stale double delete", func(t *testing.T) {
		writer := &MockRangeWriter{}
		store := usecase.NewRangeStore(mustRanges("1-2:0x1:a"), writer, newTestLogger())

		removed, err := store.Delete(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "1-2:0x1:a", usecase.FormatRange(removed))
		assert.Equal(t, "", writer.Last())

		_, err = store.Delete(ctx, 0)
		assert.True(t, errors.Is(err, domain.ErrRangeIndexOutOfRange))
		assert.Len(t, writer.Writes, 1)
	})

	t.Run("should keep the list when persisting fails", func(t *testing.T) {
		writer := &MockRangeWriter{WriteErr: errBoom}
		store := usecase.NewRangeStore(mustRanges("1-2:0x1:a"), writer, newTestLogger())

		_, err := store.Add(ctx, "10-20:0x1:b")
		assert.True(t, errors.Is(err, domain.ErrPersistRanges))
		_, err = store.Edit(ctx, 0, "10-20:0x1:b")
		assert.True(t, errors.Is(err, domain.ErrPersistRanges))
		_, err = store.Delete(ctx, 0)
		assert.True(t, errors.Is(err, domain.ErrPersistRanges))

		assert.Equal(t, "1-2:0x1:a", usecase.FormatRanges(store.List()))
		assert.False(t, store.Match(15, 1).Matched, "matcher must not see the unpersisted range")
	})

	t.Run("should hand out copies", func(t *testing.T) {
		store := usecase.NewRangeStore(mustRanges("1-2:0x1:a"), &MockRangeWriter{}, newTestLogger())
		list := store.List()
		list[0].Recipients[0].Username = "mutated"
		list[0].MaxPrice = 999

		assert.Equal(t, "1-2:0x1:a", usecase.FormatRanges(store.List()))
	})

	t.Run("should serialize concurrent mutations", func(t *testing.T) {
		writer := &MockRangeWriter{}
		store := usecase.NewRangeStore(nil, writer, newTestLogger())

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = store.Add(ctx, "1-2:0x1:a")
				_ = store.Match(1, 1)
			}()
		}
		wg.Wait()

		assert.Equal(t, 20, store.Count())
		assert.Len(t, writer.Writes, 20)
		assert.Equal(t, usecase.FormatRanges(store.List()), writer.Last())
	})
}
