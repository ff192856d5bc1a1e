package model

import "time"

// Item is a stocked consumable belonging to one consumption type.
type Item struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	PhotoMime    string     `json:"photo_mime,omitempty"`
	Stock        int        `json:"stock"`
	TypeID       int64      `json:"type_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	TypeName   string `json:"type_name,omitempty"`
	TypeLimit  int    `json:"type_limit,omitempty"`
	TypePeriod string `json:"type_period,omitempty"`
}
