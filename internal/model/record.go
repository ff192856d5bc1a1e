package model

import "time"

// Record is an immutable consumption record: a user took quantity units of
// an item, with a proof photo. Rows are append-only.
type Record struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ItemID    int64     `json:"item_id"`
	Quantity  int       `json:"quantity"`
	PhotoMime string    `json:"photo_mime,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	TakenAt   time.Time `json:"taken_at"`

	// Joined fields (not always populated).
	UserName   string `json:"user_name,omitempty"`
	ItemName   string `json:"item_name,omitempty"`
	TypeName   string `json:"type_name,omitempty"`
	TypePeriod string `json:"type_period,omitempty"`
}
