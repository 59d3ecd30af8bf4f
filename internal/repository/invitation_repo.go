package repository

import (
	"database/sql"
	"fmt"

	"pantrypal/internal/apperr"
	"pantrypal/internal/database"
	"pantrypal/internal/models"
)

// InvitationRepository handles invitation persistence
type InvitationRepository struct {
	db *database.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *database.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// invitationSelect joins the inviter and household so listings and
// invitation emails don't need follow-up lookups.
const invitationSelect = `
	SELECT i.id, i.household_id, i.email, i.invited_user_id, i.role, i.status,
	       i.invited_by, i.created_at, i.updated_at, i.expires_at,
	       u.name, h.name
	FROM invitations i
	JOIN users u ON u.id = i.invited_by
	JOIN households h ON h.id = i.household_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvitation(row rowScanner) (*models.Invitation, error) {
	var inv models.Invitation
	var invitedUserID sql.NullInt64
	err := row.Scan(&inv.ID, &inv.HouseholdID, &inv.Email, &invitedUserID,
		&inv.Role, &inv.Status, &inv.InvitedBy,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.ExpiresAt,
		&inv.InviterName, &inv.HouseholdName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if invitedUserID.Valid {
		inv.InvitedUserID = &invitedUserID.Int64
	}
	return &inv, nil
}

// CreateInvitation inserts a new invitation and sets its ID
func (r *InvitationRepository) CreateInvitation(inv *models.Invitation) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO invitations (household_id, email, invited_user_id, role, status, invited_by, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.HouseholdID, inv.Email, inv.InvitedUserID, inv.Role, inv.Status,
		inv.InvitedBy, inv.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	inv.ID = id
	return nil
}

// GetInvitation returns the invitation with the given id, or nil if none exists
func (r *InvitationRepository) GetInvitation(id int64) (*models.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRow(invitationSelect+` WHERE i.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// FindPendingInvitation returns the stored-PENDING invitation for the
// given household and email, or nil if none exists. The caller decides
// whether a returned invitation is past its expiry.
func (r *InvitationRepository) FindPendingInvitation(householdID int64, email string) (*models.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRow(invitationSelect+`
		WHERE i.household_id = ? AND i.email = ? AND i.status = ?`,
		householdID, email, models.InvitationPending))
	if err != nil {
		return nil, fmt.Errorf("failed to find pending invitation: %w", err)
	}
	return inv, nil
}

// ListHouseholdInvitations returns all invitations for a household,
// newest first
func (r *InvitationRepository) ListHouseholdInvitations(householdID int64) ([]models.Invitation, error) {
	return r.list(invitationSelect+`
		WHERE i.household_id = ?
		ORDER BY i.created_at DESC`, householdID)
}

// ListInvitationsForEmail returns all stored-PENDING invitations
// addressed to the given email, newest first
func (r *InvitationRepository) ListInvitationsForEmail(email string) ([]models.Invitation, error) {
	return r.list(invitationSelect+`
		WHERE i.email = ? AND i.status = ?
		ORDER BY i.created_at DESC`, email, models.InvitationPending)
}

func (r *InvitationRepository) list(query string, args ...interface{}) ([]models.Invitation, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

// MarkStatus moves an invitation from one status to another as a
// compare-and-set, reporting whether the transition won. A false return
// means another writer changed the status first.
func (r *InvitationRepository) MarkStatus(id int64, from, to models.InvitationStatus) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE invitations SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update invitation status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check status update result: %w", err)
	}
	return affected > 0, nil
}

// UpdatePendingInvitation updates the role, expiry, and resolved user of
// an invitation while it is still stored PENDING, reporting whether the
// row was updated.
func (r *InvitationRepository) UpdatePendingInvitation(inv *models.Invitation) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE invitations
		SET role = ?, expires_at = ?, invited_user_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?`,
		inv.Role, inv.ExpiresAt, inv.InvitedUserID, inv.ID, models.InvitationPending)
	if err != nil {
		return false, fmt.Errorf("failed to update invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check update result: %w", err)
	}
	return affected > 0, nil
}

// MarkOverdueExpired flips every stored-PENDING invitation past its
// expiry to EXPIRED and returns how many were updated. Reads already
// treat those rows as expired; this sweep just persists the fact.
func (r *InvitationRepository) MarkOverdueExpired() (int64, error) {
	result, err := r.db.Exec(`
		UPDATE invitations SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE status = ? AND expires_at < CURRENT_TIMESTAMP`,
		models.InvitationExpired, models.InvitationPending)
	if err != nil {
		return 0, fmt.Errorf("failed to expire overdue invitations: %w", err)
	}
	return result.RowsAffected()
}

// AcceptInvitation atomically marks the invitation accepted and creates
// the membership. The status flip is a compare-and-set on PENDING, so of
// two concurrent accepts exactly one wins; the membership insert is
// backed by the (household, user) unique index, so accepting while
// already a member rolls the whole thing back.
func (r *InvitationRepository) AcceptInvitation(inv *models.Invitation, userID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE invitations
		SET status = ?, invited_user_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?`,
		models.InvitationAccepted, userID, inv.ID, models.InvitationPending)
	if err != nil {
		return fmt.Errorf("failed to mark invitation accepted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check accept result: %w", err)
	}
	if affected == 0 {
		return apperr.StateConflict("invitation_not_pending", "invitation is no longer pending")
	}

	_, err = tx.ExecReturningID(`
		INSERT INTO household_members (household_id, user_id, role)
		VALUES (?, ?, ?)`, inv.HouseholdID, userID, inv.Role)
	if err != nil {
		if r.db.IsDuplicateEntry(err) {
			return apperr.Conflict("member_exists", "user is already a member of this household")
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
