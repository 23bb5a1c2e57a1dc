package model

import (
	"time"
)

// Product statuses follow the catalog's stringly-typed convention: "1" is
// active, "0" inactive. Imported rows with no status column default to "0".
const (
	ProductActive   = "1"
	ProductInactive = "0"
)

// Product is a catalog entry. The bulk-import pipeline creates products; the
// CRUD surface manages them afterwards. DeletedAt implements soft deletion.
type Product struct {
	ID          int64      `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Category    string     `json:"category"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`
}
