package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/photos"
	"github.com/danielhkuo/quickly-vote/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))

	// Connect to the database
	database, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Create schema (tables)
	if err := db.CreateSchema(database); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	photoStore, err := photos.NewStore(cfg.PhotoDir)
	if err != nil {
		slog.Error("photo directory unavailable", "error", err)
		os.Exit(1)
	}

	services := router.NewServices(database, cfg, photoStore)

	ctx := context.Background()

	if cfg.SeedAdmin {
		if cfg.UsesDefaultAdminPassword() {
			slog.Warn("seeding admin with the default password; set ADMIN_PASSWORD",
				"username", cfg.AdminUsername)
		}
		created, err := services.Gate.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			slog.Error("admin seeding failed", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("Seeded admin account", "username", cfg.AdminUsername)
		}
	}

	// The seeded default is public; keep nagging until it is changed
	works, err := services.Gate.PasswordWorks(ctx, cfg.AdminUsername, cliparse.DefaultAdminPassword)
	if err != nil {
		slog.Error("admin password check failed", "error", err)
	} else if works {
		slog.Warn("admin account still uses the default password; set ADMIN_PASSWORD or change it",
			"username", cfg.AdminUsername)
	}

	if purged, err := services.Gate.PurgeExpired(ctx); err != nil {
		slog.Error("session cleanup failed", "error", err)
	} else if purged > 0 {
		slog.Info("Purged expired sessions", "count", purged)
	}

	restored, removed, err := services.Voting.RecoverPhotos(ctx)
	if err != nil {
		slog.Error("photo recovery failed", "error", err)
		os.Exit(1)
	}
	if restored > 0 || removed > 0 {
		slog.Info("Recovered pending photos", "restored", restored, "removed", removed)
	}

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(services, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		// Let in-flight requests finish before the database closes
		<-drained
		slog.Info("Server closed", "error", err)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
