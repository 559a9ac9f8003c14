package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func validSpec(t *testing.T) LineItemSpec {
	return LineItemSpec{
		ProductID:       uuid.New(),
		Quantity:        15,
		Price:           decimal.NewFromInt(100),
		ManufactureDate: mustDate(t, "2024-01-01"),
		ExpirationDate:  mustDate(t, "2024-06-01"),
	}
}

func TestNewLineItem(t *testing.T) {
	stockID := uuid.New()

	t.Run("defaults selling price and rating to zero", func(t *testing.T) {
		item, err := NewLineItem(stockID, validSpec(t))
		require.NoError(t, err)
		assert.Equal(t, stockID, item.StockID)
		require.NotNil(t, item.SellingPrice)
		assert.True(t, item.SellingPrice.IsZero())
		assert.Equal(t, 0, item.StarRating)
		assert.True(t, item.Total().Equal(decimal.NewFromInt(1500)))
	})

	tests := []struct {
		name    string
		mutate  func(s *LineItemSpec)
		message string
	}{
		{"negative quantity", func(s *LineItemSpec) { s.Quantity = -1 }, "Quantity cannot be negative"},
		{"negative price", func(s *LineItemSpec) { s.Price = decimal.NewFromInt(-1) }, "Price cannot be negative"},
		{"rating too high", func(s *LineItemSpec) { s.StarRating = 6 }, "Star rating"},
		{"missing product", func(s *LineItemSpec) { s.ProductID = uuid.Nil }, "Product ID is required"},
		{"missing dates", func(s *LineItemSpec) { s.ExpirationDate = time.Time{} }, "dates are required"},
		{"manufacture after expiry", func(s *LineItemSpec) {
			s.ManufactureDate, s.ExpirationDate = s.ExpirationDate, s.ManufactureDate
		}, "is after expiration date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec(t)
			tt.mutate(&spec)
			_, err := NewLineItem(stockID, spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLineItem_Apply(t *testing.T) {
	item, err := NewLineItem(uuid.New(), validSpec(t))
	require.NoError(t, err)
	originalPrice := item.Price
	originalExpiry := item.ExpirationDate

	t.Run("patching quantity leaves other fields unchanged", func(t *testing.T) {
		qty := 40
		require.NoError(t, item.Apply(LineItemPatch{Quantity: &qty}))
		assert.Equal(t, 40, item.Quantity)
		assert.True(t, item.Price.Equal(originalPrice))
		assert.Equal(t, originalExpiry, item.ExpirationDate)
	})

	t.Run("explicit zero is applied", func(t *testing.T) {
		zero := 0
		require.NoError(t, item.Apply(LineItemPatch{Quantity: &zero}))
		assert.Equal(t, 0, item.Quantity)
	})

	t.Run("invalid patch is rejected atomically", func(t *testing.T) {
		qty := 10
		early := mustDate(t, "2023-01-01")
		require.Error(t, item.Apply(LineItemPatch{Quantity: &qty, ExpirationDate: &early}))
		assert.Equal(t, 0, item.Quantity)
		assert.Equal(t, originalExpiry, item.ExpirationDate)
	})

	t.Run("sets selling price", func(t *testing.T) {
		sp := decimal.NewFromInt(150)
		require.NoError(t, item.Apply(LineItemPatch{SellingPrice: &sp}))
		assert.True(t, item.SellingPrice.Equal(sp))
	})
}

func TestTotals(t *testing.T) {
	items := []LineItem{
		{Quantity: 15, Price: decimal.NewFromInt(100)},
		{Quantity: 3, Price: decimal.RequireFromString("2.50")},
	}
	totals := Totals(items)
	assert.True(t, totals.Value.Equal(decimal.RequireFromString("1507.5")))
	assert.Equal(t, int64(18), totals.Quantity)

	empty := Totals(nil)
	assert.True(t, empty.Value.IsZero())
	assert.Equal(t, int64(0), empty.Quantity)
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, IsLowStock(19))
	assert.False(t, IsLowStock(20))
	assert.True(t, IsLowStock(0))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-06-01T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01/06/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected YYYY-MM-DD")

	_, err = ParseDate("")
	require.Error(t, err)
}
