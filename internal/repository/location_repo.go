package repository

import (
	"database/sql"
	"fmt"

	"pantrypal/internal/apperr"
	"pantrypal/internal/database"
	"pantrypal/internal/models"
)

// LocationRepository handles storage location persistence
type LocationRepository struct {
	db *database.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *database.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// CreateLocation inserts a new location and sets its ID. A duplicate
// name within the household is reported as a conflict.
func (r *LocationRepository) CreateLocation(loc *models.Location) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO locations (household_id, name, description)
		VALUES (?, ?, ?)`, loc.HouseholdID, loc.Name, loc.Description)
	if err != nil {
		if r.db.IsDuplicateEntry(err) {
			return apperr.Conflict("location_exists", "a location with this name already exists in the household")
		}
		return fmt.Errorf("failed to create location: %w", err)
	}
	loc.ID = id
	return nil
}

// GetLocation returns the location with the given id, or nil if none exists
func (r *LocationRepository) GetLocation(id int64) (*models.Location, error) {
	var loc models.Location
	err := r.db.QueryRow(`
		SELECT id, household_id, name, description, created_at, updated_at
		FROM locations WHERE id = ?`, id).
		Scan(&loc.ID, &loc.HouseholdID, &loc.Name, &loc.Description,
			&loc.CreatedAt, &loc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &loc, nil
}

// ListLocations returns all locations in a household ordered by name
func (r *LocationRepository) ListLocations(householdID int64) ([]models.Location, error) {
	rows, err := r.db.Query(`
		SELECT id, household_id, name, description, created_at, updated_at
		FROM locations WHERE household_id = ?
		ORDER BY name`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.HouseholdID, &loc.Name, &loc.Description,
			&loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// UpdateLocation updates a location's name and description
func (r *LocationRepository) UpdateLocation(loc *models.Location) error {
	result, err := r.db.Exec(`
		UPDATE locations SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, loc.Name, loc.Description, loc.ID)
	if err != nil {
		if r.db.IsDuplicateEntry(err) {
			return apperr.Conflict("location_exists", "a location with this name already exists in the household")
		}
		return fmt.Errorf("failed to update location: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("location_not_found", "location does not exist")
	}
	return nil
}

// DeleteLocation removes a location. Items stored there keep existing
// with no location.
func (r *LocationRepository) DeleteLocation(id int64) error {
	result, err := r.db.Exec(`DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("location_not_found", "location does not exist")
	}
	return nil
}
