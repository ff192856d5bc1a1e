package ledger

import (
	"time"

	"github.com/kantorid/persediaan/internal/model"
)

// WindowStart computes the inclusive start of the current quota window for a
// period at the given instant. Weekly quotas use a trailing seven-day window,
// monthly quotas reset on the first of the calendar month in now's location.
// Callers pass now explicitly so boundary behavior is testable; the server
// evaluates it in its configured time zone.
func WindowStart(period string, now time.Time) time.Time {
	switch period {
	case model.PeriodMonthly:
		y, m, _ := now.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	default:
		return now.Add(-7 * 24 * time.Hour)
	}
}
