package models

import "time"

// PantryItem is a stocked item in a household, optionally placed in a
// location and optionally carrying a best-before date.
type PantryItem struct {
	ID          int64      `json:"id"`
	HouseholdID int64      `json:"household_id"`
	LocationID  *int64     `json:"location_id,omitempty"`
	Name        string     `json:"name"`
	Quantity    float64    `json:"quantity"`
	Unit        string     `json:"unit"`
	BestBefore  *time.Time `json:"best_before,omitempty"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
