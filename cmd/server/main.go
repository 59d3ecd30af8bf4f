package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pantrypal/internal/config"
	"pantrypal/internal/database"
	"pantrypal/internal/handlers"
	"pantrypal/internal/policy"
	"pantrypal/internal/repository"
	"pantrypal/internal/security"
	"pantrypal/internal/service"
)

func main() {
	// Load .env when present; real environments set variables directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()

	// Initialize database (sqlite, postgres, or mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	householdRepo := repository.NewHouseholdRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	pantryRepo := repository.NewPantryRepository(db)

	// Services
	evaluator := policy.NewEvaluator(householdRepo)
	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	emailService, err := service.NewEmailService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	householdService := service.NewHouseholdService(householdRepo, userRepo, evaluator)
	invitationService := service.NewInvitationService(invitationRepo, householdRepo, userRepo, evaluator, emailService, cfg.InvitationExpiry)
	pantryService := service.NewPantryService(locationRepo, pantryRepo, evaluator)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	oauthHandler := handlers.NewOAuthHandler(authService, cfg)
	householdHandler := handlers.NewHouseholdHandler(householdService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	pantryHandler := handlers.NewPantryHandler(pantryService)

	limiter := security.NewRateLimiter(20, time.Minute)

	mux := http.NewServeMux()

	// Public routes
	mux.Handle("POST /api/auth/register", handlers.RateLimit(limiter, http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", handlers.RateLimit(limiter, http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/providers", oauthHandler.Providers)
	mux.HandleFunc("GET /auth/{provider}/start", oauthHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", oauthHandler.OAuthCallback)
	mux.HandleFunc("POST /auth/{provider}/callback", oauthHandler.OAuthCallback)

	// Authenticated routes
	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/auth/me", authHandler.Me)

	protected.HandleFunc("POST /api/households", householdHandler.Create)
	protected.HandleFunc("GET /api/households", householdHandler.List)
	protected.HandleFunc("GET /api/households/{id}", householdHandler.Get)
	protected.HandleFunc("PUT /api/households/{id}", householdHandler.Update)
	protected.HandleFunc("DELETE /api/households/{id}", householdHandler.Delete)
	protected.HandleFunc("GET /api/households/{id}/members", householdHandler.ListMembers)
	protected.HandleFunc("POST /api/households/{id}/members", householdHandler.AddMember)
	protected.HandleFunc("PUT /api/households/{id}/members/{userID}", householdHandler.UpdateRole)
	protected.HandleFunc("DELETE /api/households/{id}/members/{userID}", householdHandler.RemoveMember)
	protected.HandleFunc("POST /api/households/{id}/leave", householdHandler.Leave)
	protected.HandleFunc("POST /api/households/{id}/transfer-ownership", householdHandler.TransferOwnership)

	protected.HandleFunc("POST /api/households/{id}/invitations", invitationHandler.Send)
	protected.HandleFunc("GET /api/households/{id}/invitations", invitationHandler.ListForHousehold)
	protected.HandleFunc("GET /api/invitations", invitationHandler.ListMine)
	protected.HandleFunc("GET /api/invitations/{id}", invitationHandler.Get)
	protected.HandleFunc("PUT /api/invitations/{id}", invitationHandler.Update)
	protected.HandleFunc("POST /api/invitations/{id}/accept", invitationHandler.Accept)
	protected.HandleFunc("POST /api/invitations/{id}/decline", invitationHandler.Decline)
	protected.HandleFunc("POST /api/invitations/{id}/cancel", invitationHandler.Cancel)
	protected.HandleFunc("POST /api/invitations/{id}/resend", invitationHandler.Resend)

	protected.HandleFunc("POST /api/households/{id}/locations", pantryHandler.CreateLocation)
	protected.HandleFunc("GET /api/households/{id}/locations", pantryHandler.ListLocations)
	protected.HandleFunc("PUT /api/locations/{id}", pantryHandler.UpdateLocation)
	protected.HandleFunc("DELETE /api/locations/{id}", pantryHandler.DeleteLocation)
	protected.HandleFunc("POST /api/households/{id}/items", pantryHandler.CreateItem)
	protected.HandleFunc("GET /api/households/{id}/items", pantryHandler.ListItems)
	protected.HandleFunc("GET /api/items/{id}", pantryHandler.GetItem)
	protected.HandleFunc("PUT /api/items/{id}", pantryHandler.UpdateItem)
	protected.HandleFunc("DELETE /api/items/{id}", pantryHandler.DeleteItem)

	mux.Handle("/api/", handlers.RequireAuth(authService, protected))

	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background maintenance: expired sessions and overdue invitations
	done := make(chan struct{})
	go cleanupSessions(authService, time.Hour, done)
	go expireInvitations(invitationService, time.Hour, done)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// cleanupSessions periodically removes expired sessions
func cleanupSessions(auth *service.AuthService, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if _, err := auth.CleanupExpiredSessions(); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
		}
	}
}

// expireInvitations periodically persists EXPIRED status for pending
// invitations past their expiry. Reads don't depend on this; it keeps
// listings and the database tidy.
func expireInvitations(invitations *service.InvitationService, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			n, err := invitations.ExpireOverdue()
			if err != nil {
				log.Printf("Error expiring overdue invitations: %v", err)
			} else if n > 0 {
				log.Printf("Marked %d invitations expired", n)
			}
		}
	}
}
