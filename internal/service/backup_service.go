package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"pantrypal/internal/database"
	"pantrypal/internal/models"
)

// BackupVersion identifies the backup file layout
const BackupVersion = 1

// BackupService exports and imports the full dataset as JSON. Exports
// include password hashes so a restored database accepts the same
// credentials; backup files must be treated as secrets.
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// backupUser carries the credential columns the public model hides from
// JSON output.
type backupUser struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BackupData is the on-disk backup layout
type BackupData struct {
	Version     int                 `json:"version"`
	CreatedAt   time.Time           `json:"created_at"`
	Users       []backupUser        `json:"users"`
	Households  []models.Household  `json:"households"`
	Members     []models.Membership `json:"members"`
	Invitations []models.Invitation `json:"invitations"`
	Locations   []models.Location   `json:"locations"`
	PantryItems []models.PantryItem `json:"pantry_items"`
}

// Export writes the full dataset to w as indented JSON
func (s *BackupService) Export(w io.Writer) error {
	data := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.exportUsers(&data); err != nil {
		return err
	}
	if err := s.exportHouseholds(&data); err != nil {
		return err
	}
	if err := s.exportMembers(&data); err != nil {
		return err
	}
	if err := s.exportInvitations(&data); err != nil {
		return err
	}
	if err := s.exportLocations(&data); err != nil {
		return err
	}
	if err := s.exportPantryItems(&data); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

func (s *BackupService) exportUsers(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at
		FROM users ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u backupUser
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name,
			&u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan user: %w", err)
		}
		data.Users = append(data.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportHouseholds(data *BackupData) error {
	rows, err := s.db.Query(`SELECT id, name, created_at, updated_at FROM households ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to export households: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h models.Household
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan household: %w", err)
		}
		data.Households = append(data.Households, h)
	}
	return rows.Err()
}

func (s *BackupService) exportMembers(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, household_id, user_id, role, created_at, updated_at
		FROM household_members ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to export members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		data.Members = append(data.Members, m)
	}
	return rows.Err()
}

func (s *BackupService) exportInvitations(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, household_id, email, invited_user_id, role, status, invited_by,
		       created_at, updated_at, expires_at
		FROM invitations ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to export invitations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var inv models.Invitation
		var invitedUserID sql.NullInt64
		if err := rows.Scan(&inv.ID, &inv.HouseholdID, &inv.Email, &invitedUserID,
			&inv.Role, &inv.Status, &inv.InvitedBy,
			&inv.CreatedAt, &inv.UpdatedAt, &inv.ExpiresAt); err != nil {
			return fmt.Errorf("failed to scan invitation: %w", err)
		}
		if invitedUserID.Valid {
			inv.InvitedUserID = &invitedUserID.Int64
		}
		data.Invitations = append(data.Invitations, inv)
	}
	return rows.Err()
}

func (s *BackupService) exportLocations(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, household_id, name, description, created_at, updated_at
		FROM locations ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to export locations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.HouseholdID, &loc.Name, &loc.Description,
			&loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan location: %w", err)
		}
		data.Locations = append(data.Locations, loc)
	}
	return rows.Err()
}

func (s *BackupService) exportPantryItems(data *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, household_id, location_id, name, quantity, unit, best_before, notes,
		       created_at, updated_at
		FROM pantry_items ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to export pantry items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item models.PantryItem
		var locationID sql.NullInt64
		var bestBefore sql.NullTime
		if err := rows.Scan(&item.ID, &item.HouseholdID, &locationID, &item.Name,
			&item.Quantity, &item.Unit, &bestBefore, &item.Notes,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan pantry item: %w", err)
		}
		if locationID.Valid {
			item.LocationID = &locationID.Int64
		}
		if bestBefore.Valid {
			item.BestBefore = &bestBefore.Time
		}
		data.PantryItems = append(data.PantryItems, item)
	}
	return rows.Err()
}

// Import loads a backup into an empty database, preserving ids so that
// cross-table references survive. Everything happens in one transaction.
func (s *BackupService) Import(r io.Reader) error {
	var data BackupData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if data.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %d", data.Version)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range data.Users {
		_, err := tx.Exec(`
			INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.OAuthProvider, u.OAuthSubject,
			u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	for _, h := range data.Households {
		_, err := tx.Exec(`
			INSERT INTO households (id, name, created_at, updated_at)
			VALUES (?, ?, ?, ?)`, h.ID, h.Name, h.CreatedAt, h.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import household %d: %w", h.ID, err)
		}
	}
	for _, m := range data.Members {
		_, err := tx.Exec(`
			INSERT INTO household_members (id, household_id, user_id, role, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.HouseholdID, m.UserID, m.Role, m.CreatedAt, m.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import member %d: %w", m.ID, err)
		}
	}
	for _, inv := range data.Invitations {
		_, err := tx.Exec(`
			INSERT INTO invitations (id, household_id, email, invited_user_id, role, status, invited_by, created_at, updated_at, expires_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, inv.HouseholdID, inv.Email, inv.InvitedUserID, inv.Role, inv.Status,
			inv.InvitedBy, inv.CreatedAt, inv.UpdatedAt, inv.ExpiresAt)
		if err != nil {
			return fmt.Errorf("failed to import invitation %d: %w", inv.ID, err)
		}
	}
	for _, loc := range data.Locations {
		_, err := tx.Exec(`
			INSERT INTO locations (id, household_id, name, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			loc.ID, loc.HouseholdID, loc.Name, loc.Description, loc.CreatedAt, loc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import location %d: %w", loc.ID, err)
		}
	}
	for _, item := range data.PantryItems {
		_, err := tx.Exec(`
			INSERT INTO pantry_items (id, household_id, location_id, name, quantity, unit, best_before, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.HouseholdID, item.LocationID, item.Name, item.Quantity,
			item.Unit, item.BestBefore, item.Notes, item.CreatedAt, item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import pantry item %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
