package model

import "time"

// ConsumptionType is a category of consumable with a per-period take limit.
type ConsumptionType struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Limit       int        `json:"limit"`
	Period      string     `json:"period"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Quota periods.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// ValidPeriod reports whether period is a known quota period.
func ValidPeriod(period string) bool {
	return period == PeriodWeekly || period == PeriodMonthly
}
