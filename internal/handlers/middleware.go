package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"pantrypal/internal/models"
	"pantrypal/internal/security"
	"pantrypal/internal/service"
)

// SessionCookieName is the cookie carrying the session id
const SessionCookieName = "pantrypal_session"

type contextKey string

const userContextKey contextKey = "user"

// GetUserFromContext returns the authenticated user, or nil on routes
// that skipped RequireAuth
func GetUserFromContext(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// RequireAuth resolves the session cookie to a user and rejects the
// request with 401 when there is no valid session
func RequireAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		user, err := auth.ValidateSession(cookie.Value)
		if err != nil {
			writeError(w, err)
			return
		}
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "session expired"})
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging logs each request with its duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %v", security.GetClientIP(r), r.Method, r.URL.Path, time.Since(start))
	})
}

// RateLimit rejects requests over the per-IP budget with 429
func RateLimit(limiter *security.RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(security.GetClientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
