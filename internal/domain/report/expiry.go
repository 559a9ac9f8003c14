package report

import (
	"math"
	"time"
)

// Urgency classifies how soon a low-stock item expires
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyNormal   Urgency = "normal"
)

// Expiry thresholds in days
const (
	CriticalExpiryDays = 30
	WarningExpiryDays  = 90
)

// DaysToExpiry returns the whole number of days from now until expiry,
// comparing calendar dates in UTC. Past expiries are negative.
func DaysToExpiry(expiry, now time.Time) int {
	e := truncateToDate(expiry)
	n := truncateToDate(now)
	return int(math.Floor(e.Sub(n).Hours() / 24))
}

// UrgencyFor classifies days to expiry
func UrgencyFor(days int) Urgency {
	switch {
	case days < CriticalExpiryDays:
		return UrgencyCritical
	case days < WarningExpiryDays:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
