package printing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatter(t *testing.T) {
	f := NewFormatter("")

	assert.Equal(t, "Rs. 1,500.00", f.Money(decimal.NewFromInt(1500)))
	assert.Equal(t, "Rs. 0.00", f.Money(decimal.Zero))
	assert.Equal(t, "1,234,567.89", f.Decimal(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "12.50", f.Decimal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "1,234", f.Int(1234))
	assert.Equal(t, "7", f.Int(7))
	assert.Equal(t, "2024-06-01", f.Date(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "-", f.Date(time.Time{}))
}

func TestFormatter_Currency(t *testing.T) {
	f := NewFormatter("USD")
	assert.Equal(t, "USD 9.99", f.Money(decimal.RequireFromString("9.99")))
}
