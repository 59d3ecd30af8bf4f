package service

import (
	"fmt"
	"time"

	"pantrypal/internal/apperr"
	"pantrypal/internal/models"
	"pantrypal/internal/repository"
	"pantrypal/internal/security"
	"pantrypal/internal/validation"
)

// AuthService handles registration, login, and session management
type AuthService struct {
	users           *repository.UserRepository
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users *repository.UserRepository, sessionDuration time.Duration) *AuthService {
	if sessionDuration <= 0 {
		sessionDuration = 24 * time.Hour
	}
	return &AuthService{users: users, sessionDuration: sessionDuration}
}

// Register creates a new user account with a password
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperr.Validation("invalid_email", err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, apperr.Validation("invalid_password", err.Error())
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, apperr.Validation("invalid_name", err.Error())
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        validation.NormalizeEmail(email),
		PasswordHash: hash,
		Name:         name,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and creates a session
func (s *AuthService) Login(email, password string) (*models.User, *models.Session, error) {
	user, err := s.users.GetUserByEmail(validation.NormalizeEmail(email))
	if err != nil {
		return nil, nil, err
	}
	if user == nil || user.PasswordHash == "" || !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, apperr.Forbidden("invalid_credentials", "invalid email or password")
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// OAuthLogin signs a user in with a verified identity from an OAuth
// provider, creating or linking the account as needed.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.User, *models.Session, error) {
	if subject == "" {
		return nil, nil, apperr.Validation("invalid_oauth_identity", "provider did not return a subject")
	}

	user, err := s.users.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, err
	}

	if user == nil && email != "" {
		// Link the provider identity to an existing account with the
		// same verified email.
		user, err = s.users.GetUserByEmail(validation.NormalizeEmail(email))
		if err != nil {
			return nil, nil, err
		}
		if user != nil {
			user.OAuthProvider = provider
			user.OAuthSubject = subject
			if err := s.users.UpdateUser(user); err != nil {
				return nil, nil, err
			}
		}
	}

	if user == nil {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, nil, apperr.Validation("invalid_email", "provider did not return a usable email")
		}
		if name == "" {
			name = email
		}
		user = &models.User{
			Email:         validation.NormalizeEmail(email),
			Name:          name,
			OAuthProvider: provider,
			OAuthSubject:  subject,
		}
		if err := s.users.CreateUser(user); err != nil {
			return nil, nil, err
		}
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// ValidateSession returns the user for a session id, or nil when the
// session is missing or expired. Expired sessions are removed.
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.users.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	if session.IsExpired() {
		if err := s.users.DeleteSession(sessionID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s.users.GetUserByID(session.UserID)
}

// Logout removes a session
func (s *AuthService) Logout(sessionID string) error {
	return s.users.DeleteSession(sessionID)
}

// CleanupExpiredSessions removes all expired sessions
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	return s.users.DeleteExpiredSessions()
}

func (s *AuthService) createSession(userID int64) (*models.Session, error) {
	session := &models.Session{
		ID:        security.GenerateSessionID(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.sessionDuration),
	}
	if err := s.users.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}
