package repository

import (
	"database/sql"
	"fmt"

	"pantrypal/internal/apperr"
	"pantrypal/internal/database"
	"pantrypal/internal/models"
)

// HouseholdRepository handles household and membership persistence
type HouseholdRepository struct {
	db *database.DB
}

// NewHouseholdRepository creates a new household repository
func NewHouseholdRepository(db *database.DB) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

// CreateHousehold creates a household and its owner membership in one
// transaction, so a household never exists without exactly one owner.
func (r *HouseholdRepository) CreateHousehold(name string, ownerID int64) (*models.Household, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	householdID, err := tx.ExecReturningID(`
		INSERT INTO households (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create household: %w", err)
	}

	_, err = tx.ExecReturningID(`
		INSERT INTO household_members (household_id, user_id, role)
		VALUES (?, ?, ?)`, householdID, ownerID, models.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetHousehold(householdID)
}

// GetHousehold returns the household with the given id, or nil if none exists
func (r *HouseholdRepository) GetHousehold(id int64) (*models.Household, error) {
	var h models.Household
	err := r.db.QueryRow(`
		SELECT id, name, created_at, updated_at
		FROM households WHERE id = ?`, id).
		Scan(&h.ID, &h.Name, &h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	return &h, nil
}

// ListHouseholdsForUser returns all households the user is a member of
func (r *HouseholdRepository) ListHouseholdsForUser(userID int64) ([]models.Household, error) {
	rows, err := r.db.Query(`
		SELECT h.id, h.name, h.created_at, h.updated_at
		FROM households h
		JOIN household_members m ON m.household_id = h.id
		WHERE m.user_id = ?
		ORDER BY h.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}
	defer rows.Close()

	var households []models.Household
	for rows.Next() {
		var h models.Household
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan household: %w", err)
		}
		households = append(households, h)
	}
	return households, rows.Err()
}

// UpdateHousehold updates a household's name
func (r *HouseholdRepository) UpdateHousehold(household *models.Household) error {
	result, err := r.db.Exec(`
		UPDATE households SET name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, household.Name, household.ID)
	if err != nil {
		return fmt.Errorf("failed to update household: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("household_not_found", "household does not exist")
	}
	return nil
}

// DeleteHousehold removes a household. Memberships, invitations,
// locations, and pantry items are removed by cascade.
func (r *HouseholdRepository) DeleteHousehold(id int64) error {
	_, err := r.db.Exec(`DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete household: %w", err)
	}
	return nil
}

// GetMember returns the membership for the given household and user, or
// nil if the user is not a member
func (r *HouseholdRepository) GetMember(householdID, userID int64) (*models.Membership, error) {
	var m models.Membership
	err := r.db.QueryRow(`
		SELECT id, household_id, user_id, role, created_at, updated_at
		FROM household_members
		WHERE household_id = ? AND user_id = ?`, householdID, userID).
		Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &m, nil
}

// ListMembers returns all memberships in a household with user names and
// emails populated, owner first, then by join time.
func (r *HouseholdRepository) ListMembers(householdID int64) ([]models.Membership, error) {
	rows, err := r.db.Query(`
		SELECT m.id, m.household_id, m.user_id, m.role, m.created_at, m.updated_at,
		       u.name, u.email
		FROM household_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.household_id = ?
		ORDER BY CASE m.role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, m.created_at`,
		householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role,
			&m.CreatedAt, &m.UpdatedAt, &m.UserName, &m.UserEmail); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AddMember inserts a membership. An existing membership for the same
// (household, user) pair is reported as a conflict.
func (r *HouseholdRepository) AddMember(householdID, userID int64, role models.Role) (*models.Membership, error) {
	_, err := r.db.ExecReturningID(`
		INSERT INTO household_members (household_id, user_id, role)
		VALUES (?, ?, ?)`, householdID, userID, role)
	if err != nil {
		if r.db.IsDuplicateEntry(err) {
			return nil, apperr.Conflict("member_exists", "user is already a member of this household")
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return r.GetMember(householdID, userID)
}

// RemoveMember deletes a membership. The delete is a compare-and-set on
// the role the caller observed, so a membership promoted by a concurrent
// ownership transfer survives: the removal loses with a state conflict.
func (r *HouseholdRepository) RemoveMember(householdID, userID int64, currentRole models.Role) error {
	result, err := r.db.Exec(`
		DELETE FROM household_members
		WHERE household_id = ? AND user_id = ? AND role = ?`, householdID, userID, currentRole)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check remove result: %w", err)
	}
	if affected == 0 {
		return apperr.StateConflict("member_changed", "membership changed concurrently")
	}
	return nil
}

// UpdateMemberRole changes a member's role, compare-and-set on the role
// the caller observed.
func (r *HouseholdRepository) UpdateMemberRole(householdID, userID int64, role, currentRole models.Role) error {
	result, err := r.db.Exec(`
		UPDATE household_members SET role = ?, updated_at = CURRENT_TIMESTAMP
		WHERE household_id = ? AND user_id = ? AND role = ?`, role, householdID, userID, currentRole)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperr.StateConflict("member_changed", "membership changed concurrently")
	}
	return nil
}

// CountMembers returns the number of members in a household
func (r *HouseholdRepository) CountMembers(householdID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM household_members WHERE household_id = ?`, householdID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// TransferOwnership atomically demotes the current owner to admin and
// promotes the target member to owner. The demotion is a compare-and-set
// on the owner role, so a concurrent transfer leaves exactly one owner:
// the loser sees a state conflict.
func (r *HouseholdRepository) TransferOwnership(householdID, fromUserID, toUserID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE household_members SET role = ?, updated_at = CURRENT_TIMESTAMP
		WHERE household_id = ? AND user_id = ? AND role = ?`,
		models.RoleAdmin, householdID, fromUserID, models.RoleOwner)
	if err != nil {
		return fmt.Errorf("failed to demote owner: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check demotion result: %w", err)
	}
	if affected == 0 {
		return apperr.StateConflict("not_owner", "user is no longer the household owner")
	}

	result, err = tx.Exec(`
		UPDATE household_members SET role = ?, updated_at = CURRENT_TIMESTAMP
		WHERE household_id = ? AND user_id = ?`,
		models.RoleOwner, householdID, toUserID)
	if err != nil {
		return fmt.Errorf("failed to promote new owner: %w", err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check promotion result: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("member_not_found", "target user is not a member of this household")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
