package ledger

import "fmt"

// ValidationError reports malformed input (non-positive quantity, missing
// proof photo, zero adjustment).
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
}

func (e NotFoundError) Error() string {
	return e.Entity + " not found"
}

// InsufficientStockError reports a take that exceeds the item's current
// stock. Available carries the stock seen inside the transaction.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: have %d, need %d", e.Available, e.Requested)
}

// QuotaExceededError reports a take that would push the user's windowed
// total above the type's per-period limit.
type QuotaExceededError struct {
	Limit     int
	Period    string
	Taken     int
	Requested int
}

func (e QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %d taken + %d requested > limit %d per %s",
		e.Taken, e.Requested, e.Limit, e.Period)
}

// NegativeStockError reports an adjustment that would drive stock below zero.
type NegativeStockError struct {
	Current int
	Change  int
}

func (e NegativeStockError) Error() string {
	return fmt.Sprintf("adjustment would result in negative stock: %d + %d = %d",
		e.Current, e.Change, e.Current+e.Change)
}
