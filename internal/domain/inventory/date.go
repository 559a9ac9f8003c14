package inventory

import (
	"strings"
	"time"

	"github.com/stockroom/backend/internal/domain/shared"
)

// DateLayout is the calendar date format used for line item dates
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date given as YYYY-MM-DD or RFC3339.
// The result is midnight UTC of that date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, shared.NewValidationError("Date is required")
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, shared.NewValidationError("Invalid date %q: expected YYYY-MM-DD", value)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
