package repository

import (
	"database/sql"
	"fmt"

	"pantrypal/internal/apperr"
	"pantrypal/internal/database"
	"pantrypal/internal/models"
)

// PantryRepository handles pantry item persistence
type PantryRepository struct {
	db *database.DB
}

// NewPantryRepository creates a new pantry repository
func NewPantryRepository(db *database.DB) *PantryRepository {
	return &PantryRepository{db: db}
}

const pantryItemColumns = `id, household_id, location_id, name, quantity, unit, best_before, notes, created_at, updated_at`

func scanPantryItem(row rowScanner) (*models.PantryItem, error) {
	var item models.PantryItem
	var locationID sql.NullInt64
	var bestBefore sql.NullTime
	err := row.Scan(&item.ID, &item.HouseholdID, &locationID, &item.Name,
		&item.Quantity, &item.Unit, &bestBefore, &item.Notes,
		&item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if locationID.Valid {
		item.LocationID = &locationID.Int64
	}
	if bestBefore.Valid {
		item.BestBefore = &bestBefore.Time
	}
	return &item, nil
}

// CreateItem inserts a new pantry item and sets its ID
func (r *PantryRepository) CreateItem(item *models.PantryItem) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO pantry_items (household_id, location_id, name, quantity, unit, best_before, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.HouseholdID, item.LocationID, item.Name, item.Quantity,
		item.Unit, item.BestBefore, item.Notes)
	if err != nil {
		return fmt.Errorf("failed to create pantry item: %w", err)
	}
	item.ID = id
	return nil
}

// GetItem returns the pantry item with the given id, or nil if none exists
func (r *PantryRepository) GetItem(id int64) (*models.PantryItem, error) {
	item, err := scanPantryItem(r.db.QueryRow(`
		SELECT `+pantryItemColumns+` FROM pantry_items WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get pantry item: %w", err)
	}
	return item, nil
}

// ListItems returns all pantry items in a household, soonest best-before
// first, undated items last
func (r *PantryRepository) ListItems(householdID int64) ([]models.PantryItem, error) {
	return r.list(`
		SELECT `+pantryItemColumns+` FROM pantry_items
		WHERE household_id = ?
		ORDER BY best_before IS NULL, best_before, name`, householdID)
}

// ListItemsByLocation returns all pantry items stored in one location
func (r *PantryRepository) ListItemsByLocation(householdID, locationID int64) ([]models.PantryItem, error) {
	return r.list(`
		SELECT `+pantryItemColumns+` FROM pantry_items
		WHERE household_id = ? AND location_id = ?
		ORDER BY best_before IS NULL, best_before, name`, householdID, locationID)
}

func (r *PantryRepository) list(query string, args ...interface{}) ([]models.PantryItem, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry items: %w", err)
	}
	defer rows.Close()

	var items []models.PantryItem
	for rows.Next() {
		item, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem updates a pantry item's fields
func (r *PantryRepository) UpdateItem(item *models.PantryItem) error {
	result, err := r.db.Exec(`
		UPDATE pantry_items
		SET location_id = ?, name = ?, quantity = ?, unit = ?, best_before = ?,
		    notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		item.LocationID, item.Name, item.Quantity, item.Unit,
		item.BestBefore, item.Notes, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update pantry item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("item_not_found", "pantry item does not exist")
	}
	return nil
}

// DeleteItem removes a pantry item
func (r *PantryRepository) DeleteItem(id int64) error {
	result, err := r.db.Exec(`DELETE FROM pantry_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("item_not_found", "pantry item does not exist")
	}
	return nil
}
