// main.go
// Intratime Killer API - fichaje automation backend
// Implements JWT sessions, SQLite persistence, and the Intratime vendor client

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlosalbertovr/intratime-killer/auth"
	"github.com/carlosalbertovr/intratime-killer/config"
	"github.com/carlosalbertovr/intratime-killer/handlers"
	"github.com/carlosalbertovr/intratime-killer/holidays"
	"github.com/carlosalbertovr/intratime-killer/intratime"
	"github.com/carlosalbertovr/intratime-killer/middleware"
	"github.com/carlosalbertovr/intratime-killer/store"

	"github.com/joho/godotenv"
)

// Global instances
var (
	cfg            *config.Config
	db             *store.Store
	sessionManager *auth.SessionManager
	vendorClient   *intratime.Client
	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	weekHandler    *handlers.WeekHandler
	historyHandler *handlers.HistoryHandler
	rateLimiter    *middleware.RateLimiter
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	// Load configuration
	cfg = config.Load()
	cfg.Validate()

	log.Printf("🚀 Starting Intratime Killer API Server")
	log.Printf("📍 Environment: %s", cfg.Server.Environment)
	log.Printf("🔧 Port: %s", cfg.Server.Port)

	// Initialize the database
	var err error
	db, err = store.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()
	log.Printf("💾 Database ready at %s", cfg.Database.Path)

	// Initialize session manager
	sessionManager = auth.NewSessionManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	log.Printf("🔐 Session manager initialized (expiration: %v)", cfg.JWT.Expiration)

	// Initialize the vendor client
	vendorClient = intratime.NewClient(cfg.Intratime.BaseURL, cfg.Intratime.Timeout, cfg.Intratime.SubmitDelay)
	log.Printf("🌐 Intratime client initialized (%s)", cfg.Intratime.BaseURL)

	// Load the bank holiday table
	holidayTable, err := holidays.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load bank holidays: %v", err)
	}
	log.Printf("📅 Loaded %d bank holidays", len(holidayTable.All()))

	// Initialize handlers
	authHandler = handlers.NewAuthHandler(vendorClient, sessionManager, db)
	userHandler = handlers.NewUserHandler(db)
	weekHandler = handlers.NewWeekHandler(vendorClient, db, holidayTable, time.Now)
	historyHandler = handlers.NewHistoryHandler(vendorClient, holidayTable, time.Now)
	log.Printf("✅ Handlers initialized")

	// Initialize rate limiter
	rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	rateLimiter.CleanupOldLimiters()
	log.Printf("🛡️  Rate limiter initialized (%d requests per %v)", cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// Set up router
	mux := http.NewServeMux()

	// Public routes (no authentication required)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/api/login", authHandler.Login)

	// Protected routes (authentication required)
	authMiddleware := middleware.AuthMiddleware(sessionManager, db)

	mux.Handle("/api/logout", authMiddleware(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("/api/user", authMiddleware(http.HandlerFunc(userHandler.Profile)))
	mux.Handle("/api/user/quota", authMiddleware(http.HandlerFunc(userHandler.UpdateQuota)))

	// Week endpoints
	mux.Handle("/api/week", authMiddleware(http.HandlerFunc(weekHandler.View)))
	mux.Handle("/api/week/validate", authMiddleware(http.HandlerFunc(weekHandler.Validate)))
	mux.Handle("/api/week/submit", authMiddleware(http.HandlerFunc(weekHandler.Submit)))

	// History endpoints
	mux.Handle("/api/history", authMiddleware(http.HandlerFunc(historyHandler.Month)))
	mux.Handle("/api/history/export", authMiddleware(http.HandlerFunc(historyHandler.Export)))
	mux.Handle("/api/holidays", authMiddleware(http.HandlerFunc(historyHandler.Holidays)))

	// Apply global middleware
	handler := middleware.CORSMiddleware(cfg.CORS.AllowedOrigins)(mux)
	handler = rateLimiter.Middleware()(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

// Health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%d,"version":"1.0.0"}`, time.Now().Unix())
}
