package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/msomdec/photocat/internal/handler"
	"github.com/msomdec/photocat/internal/repository/sqlite"
	"github.com/msomdec/photocat/internal/service"
	"github.com/msomdec/photocat/internal/websocket"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	godotenv.Load()

	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, logOpts)))

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "photocat.db")
	libraryPath := envOrDefault("LIBRARY_PATH", "photos")
	thumbPath := envOrDefault("THUMBNAIL_PATH", "thumbnails")
	placeholderPath := envOrDefault("PLACEHOLDER_PATH", "static/placeholder.png")

	db, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	broadcaster := service.NewBroadcaster()
	gallery := service.NewGallery(db.Catalog(), broadcaster.Publish, placeholderPath)
	if err := gallery.Load(context.Background()); err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded",
		"photos", len(gallery.AllPhotos()),
		"albums", len(gallery.Albums()),
	)

	scanner := service.NewScanner(gallery, libraryPath, thumbPath)
	limiter := service.NewTokenBucket(5, 20)
	hub := websocket.NewHub(gallery, broadcaster, limiter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	// Initial library scan in the background so startup isn't gated on a
	// large library walk.
	go func() {
		if _, _, err := scanner.Scan(ctx); err != nil {
			slog.Error("initial library scan", "error", err)
		}
	}()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux,
		handler.NewGalleryHandler(gallery, scanner),
		handler.NewEventsHandler(broadcaster),
		hub,
	)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.SecurityHeaders(handler.RequestLogger(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Async saves are fire-and-forget; one final synchronous flush keeps
	// the durable snapshot as fresh as possible across restarts.
	if err := gallery.Flush(shutdownCtx); err != nil {
		slog.Error("final catalog flush", "error", err)
	}
	slog.Info("server stopped")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
