package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/rpattn/sightline/internal/config"
	"github.com/rpattn/sightline/internal/db"
	"github.com/rpattn/sightline/internal/geocode"
	"github.com/rpattn/sightline/internal/ingest"
	"github.com/rpattn/sightline/internal/middleware"
	"github.com/rpattn/sightline/internal/repository"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Extra source profiles beyond the built-ins
	if cfg.Import.ProfileFile != "" {
		n, err := ingest.LoadProfiles(cfg.Import.ProfileFile)
		if err != nil {
			log.Fatalf("Failed to load source profiles: %v", err)
		}
		log.Printf("Loaded %d source profiles from %s", n, cfg.Import.ProfileFile)
	}

	// Repositories and pipeline collaborators
	reportRepo := repository.NewReportRepository(conn.Pool)
	importLogRepo := repository.NewImportLogRepository(conn.Pool)
	fetcher := ingest.NewHTTPFetcher(time.Duration(cfg.Import.FetchTimeout) * time.Second)
	runner := ingest.NewRunner(fetcher, reportRepo)

	importHandler := ingest.NewHTTPHandler(runner, importLogRepo, cfg.Import.ChunkSize)
	geocoder := geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.APIKey)
	sweeper := geocode.NewSweeper(reportRepo, geocoder, cfg.Geocoder.SweepLimit)
	geocodeHandler := geocode.NewHTTPHandler(sweeper)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		payload := map[string]any{"ok": true}
		if count, err := reportRepo.Count(r.Context()); err == nil {
			payload["reports"] = count
		}
		_ = json.NewEncoder(w).Encode(payload)
	})
	mux.Handle("GET /api/sources", http.HandlerFunc(importHandler.ServeSources))
	mux.Handle("POST /api/import/{source}", middleware.AdminGuard(cfg.Auth.AdminToken, http.HandlerFunc(importHandler.ServeImport)))
	mux.Handle("POST /api/report", http.HandlerFunc(importHandler.ServeReport))
	mux.Handle("POST /api/geocode", middleware.CronGuard(cfg.Auth.CronToken, geocodeHandler))
	mux.Handle("GET /api/imports", middleware.AdminGuard(cfg.Auth.AdminToken, importLogsHandler(importLogRepo)))

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      middleware.LoggingMiddleware(corsHandler.Handler(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // imports hold the request open
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting sightline server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func importLogsHandler(logs repository.ImportLogRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries, err := logs.ListRecent(r.Context(), 50)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": entries})
	})
}
