//go:build !integration

package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/usecase"
)

func TestParseRange(t *testing.T) {
	t.Run("should parse ids and handles", func(t *testing.T) {
		r, err := usecase.ParseRange("1000-5000:500000x1:alice,123456")
		require.NoError(t, err)
		assert.Equal(t, model.GiftRange{
			MinPrice:    1000,
			MaxPrice:    5000,
			SupplyLimit: 500000,
			Quantity:    1,
			Recipients:  []model.Recipient{model.RecipientHandle("alice"), model.RecipientID(123456)},
		}, r)
	})

	t.Run("should strip handle marker and whitespace", func(t *testing.T) {
		r, err := usecase.ParseRange("  10 - 20 : 0 x 2 : @bob , 42 ,, @bob ")
		require.NoError(t, err)
		assert.Equal(t, int64(10), r.MinPrice)
		assert.Equal(t, int64(20), r.MaxPrice)
		assert.Equal(t, int64(0), r.SupplyLimit)
		assert.Equal(t, 2, r.Quantity)
		assert.Equal(t, []model.Recipient{model.RecipientHandle("bob"), model.RecipientID(42)}, r.Recipients)
	})

	bad := map[string]string{
		"too few fields":       "1-2:0x1",
		"too many fields":      "1-2:0x1:a:b",
		"missing x":            "1-2:01:a",
		"missing dash":         "12:0x1:a",
		"non numeric min":      "a-2:0x1:a",
		"non numeric qty":      "1-2:0xq:a",
		"min greater than max": "5-2:0x1:a",
		"negative supply":      "1-2:-1x1:a",
		"zero quantity":        "1-2:0x0:a",
		"no recipients":        "1-2:0x1: , ",
		"empty":                "",
	}
	for name, input := range bad {
		t.Run("should reject "+name, func(t *testing.T) {
			_, err := usecase.ParseRange(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidRangeFormat))
			var pe *usecase.ParseError
			require.True(t, errors.As(err, &pe))
			assert.NotEmpty(t, pe.Reason)
		})
	}
}

func TestFormatRange_RoundTrip(t *testing.T) {
	cases := map[string]string{
		"1000-5000:500000x1:alice,123456": "1000-5000:500000x1:alice,123456",
		" 10 - 20 : 0 x 2 : @bob ":        "10-20:0x2:bob",
		"1-1:3x4:@a,@b,7":                 "1-1:3x4:a,b,7",
		"0-999999999:0x10:x1":             "0-999999999:0x10:x1",
	}
	for input, want := range cases {
		r, err := usecase.ParseRange(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, usecase.FormatRange(r))

		again, err := usecase.ParseRange(usecase.FormatRange(r))
		require.NoError(t, err)
		assert.Equal(t, r, again)
	}
}

func TestParseRanges(t *testing.T) {
	t.Run("should keep order and skip empty entries", func(t *testing.T) {
		rs, err := usecase.ParseRanges("1-2:0x1:a;;3-4:5x2:b;")
		require.NoError(t, err)
		require.Len(t, rs, 2)
		assert.Equal(t, "1-2:0x1:a;3-4:5x2:b", usecase.FormatRanges(rs))
	})

	t.Run("should name the bad entry", func(t *testing.T) {
		_, err := usecase.ParseRanges("1-2:0x1:a;broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "range entry 2")
	})

	t.Run("should accept empty config", func(t *testing.T) {
		rs, err := usecase.ParseRanges("")
		require.NoError(t, err)
		assert.Empty(t, rs)
		assert.Equal(t, "", usecase.FormatRanges(rs))
	})
}

func TestParseRecipient(t *testing.T) {
	r, err := usecase.ParseRecipient("@carol")
	require.NoError(t, err)
	assert.Equal(t, model.RecipientHandle("carol"), r)

	r, err = usecase.ParseRecipient("carol")
	require.NoError(t, err)
	assert.Equal(t, "@carol", r.Display())

	r, err = usecase.ParseRecipient("987")
	require.NoError(t, err)
	assert.True(t, r.IsID())

	_, err = usecase.ParseRecipient("@")
	assert.Error(t, err)
}
