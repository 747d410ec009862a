package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/StackCodeArtisan/Madeiyesehomecare/config"
	"github.com/StackCodeArtisan/Madeiyesehomecare/email"
	"github.com/StackCodeArtisan/Madeiyesehomecare/handler"
	appLogger "github.com/StackCodeArtisan/Madeiyesehomecare/logger"
	"github.com/StackCodeArtisan/Madeiyesehomecare/middleware"
	redisClient "github.com/StackCodeArtisan/Madeiyesehomecare/redis"
	"github.com/StackCodeArtisan/Madeiyesehomecare/security"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize logger
	appLogger.Initialize()

	// Load configuration
	cfg := config.MustLoadConfig()
	log.Info().Msg("Configuration loaded successfully")

	// Initialize Redis-backed abuse tracking (if enabled)
	var rdb *goredis.Client
	if cfg.Redis.Enabled {
		rdb = redisClient.NewClient(cfg.Redis)
	} else {
		log.Info().Msg("Redis abuse tracking disabled in configuration")
	}
	tracker := security.NewAbuseTracker(rdb)

	// Anti-abuse state: rotating session tokens and the per-IP submission window
	tokens := security.NewTokenStore(time.Duration(cfg.AntiAbuse.SessionTTLMinutes)*time.Minute, nil)
	limiter := security.NewSubmitLimiter(cfg.AntiAbuse.MaxAttempts, time.Duration(cfg.AntiAbuse.WindowMinutes)*time.Minute, nil)

	// Email notifier for the care team
	notifier := email.NewNotifier(cfg.SMTP)
	log.Info().
		Bool("email_enabled", cfg.SMTP.Enabled).
		Str("destination", cfg.SMTP.Destination).
		Int("min_form_age_seconds", cfg.AntiAbuse.MinFormAgeSeconds).
		Int("max_attempts", cfg.AntiAbuse.MaxAttempts).
		Int("window_minutes", cfg.AntiAbuse.WindowMinutes).
		Msg("Submission gate initialized")

	// Create handler with dependency injection
	formHandler := handler.NewFormHandler(tokens, limiter, notifier, tracker, cfg)

	// Set up router
	r := mux.NewRouter()

	// Apply global middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	r.Use(middleware.Recover)
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	// Register routes
	r.HandleFunc("/health", formHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/form-session", formHandler.FormSession).Methods("GET")
	r.HandleFunc("/request-care", formHandler.RequestCare).Methods("POST")
	r.HandleFunc("/submit-appointment", formHandler.SubmitAppointment).Methods("POST")

	// Configure HTTP server
	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("scheme", cfg.WebServer.Scheme).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Close Redis connection
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}

	log.Info().Msg("Server stopped gracefully")
}
