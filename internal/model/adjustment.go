package model

import "time"

// Adjustment is an immutable audit entry of a signed stock delta applied to
// an item outside the take flow. Rows are append-only.
type Adjustment struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	Change    int       `json:"change"`
	Reason    string    `json:"reason"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
	UserName string `json:"user_name,omitempty"`
}
