package repository

import (
	"database/sql"
	"fmt"

	"pantrypal/internal/apperr"
	"pantrypal/internal/database"
	"pantrypal/internal/models"
)

// UserRepository handles user and session persistence
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name,
		&u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user and sets its ID. A duplicate email is
// reported as a conflict.
func (r *UserRepository) CreateUser(user *models.User) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO users (email, password_hash, name, oauth_provider, oauth_subject)
		VALUES (?, ?, ?, ?, ?)`,
		user.Email, user.PasswordHash, user.Name, user.OAuthProvider, user.OAuthSubject)
	if err != nil {
		if r.db.IsDuplicateEntry(err) {
			return apperr.Conflict("email_taken", "an account with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// GetUserByID returns the user with the given id, or nil if none exists
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`
		SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail returns the user with the given email, or nil if none exists
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`
		SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUserByOAuth returns the user linked to the given provider subject,
// or nil if none exists
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`
		SELECT `+userColumns+` FROM users
		WHERE oauth_provider = ? AND oauth_subject = ?`, provider, subject))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by oauth identity: %w", err)
	}
	return user, nil
}

// UpdateUser updates a user's profile fields
func (r *UserRepository) UpdateUser(user *models.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET name = ?, password_hash = ?, oauth_provider = ?, oauth_subject = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		user.Name, user.PasswordHash, user.OAuthProvider, user.OAuthSubject, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// CreateSession stores a new session
func (r *UserRepository) CreateSession(session *models.Session) error {
	_, err := r.db.Exec(`
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES (?, ?, ?)`,
		session.ID, session.UserID, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession returns the session with the given id, or nil if none exists
func (r *UserRepository) GetSession(id string) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRow(`
		SELECT id, user_id, expires_at, created_at
		FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// DeleteSession removes a session
func (r *UserRepository) DeleteSession(id string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry and
// returns how many were deleted
func (r *UserRepository) DeleteExpiredSessions() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
