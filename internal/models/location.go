package models

import "time"

// Location is a storage place within a household (fridge, freezer,
// cellar shelf). Location names are unique per household.
type Location struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
