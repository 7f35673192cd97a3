package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pfrost/cinelog/internal/catalog"
	"github.com/pfrost/cinelog/internal/database"
	"github.com/pfrost/cinelog/internal/logging"
	"github.com/pfrost/cinelog/internal/server"
)

func main() {
	_ = godotenv.Load() // load .env if present (ok if missing in prod)

	logger := logging.Setup(os.Getenv("CINELOG_LOG_LEVEL"))

	port := os.Getenv("CINELOG_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CINELOG_DB_PATH")
	if dbPath == "" {
		dbPath = "cinelog.db"
	}

	apiKey := os.Getenv("CINELOG_TMDB_API_KEY")
	if apiKey == "" {
		slog.Error("CINELOG_TMDB_API_KEY is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	catalogClient := catalog.NewClient(apiKey, os.Getenv("CINELOG_TMDB_BASE_URL"))

	srv := server.New(db, catalogClient, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Periodic cleanup of expired sessions and stale rate-limit entries.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("session cleanup", "deleted", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	go func() {
		fmt.Printf("Cinelog running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
