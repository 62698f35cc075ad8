// Package main is the entry point for the fotoproof gallery server.
// It loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fotoproof/internal/cache"
	"fotoproof/internal/config"
	"fotoproof/internal/database"
	"fotoproof/internal/handlers"
	"fotoproof/internal/imaging"
	"fotoproof/internal/mail"
	"fotoproof/internal/middleware"
	"fotoproof/internal/mirror"
	"fotoproof/internal/orders"
	"fotoproof/internal/resolver"
	"fotoproof/internal/router"
	"fotoproof/internal/session"
	"fotoproof/internal/storage"
	"fotoproof/internal/store"
)

func main() {
	// Structured logger — text output, debug level.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"storage_root", cfg.StorageRoot,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions + value cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark session cookies as Secure.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	valueCache := cache.NewValueCache(valkeyClient, cache.DefaultValueTTL)

	// Prepare the storage layout (categories/, thumbnails/, orders/).
	layout, err := storage.NewLayout(cfg.StorageRoot)
	if err != nil {
		slog.Error("failed to prepare storage layout", "error", err)
		os.Exit(1)
	}

	// libvips powers thumbnail generation.
	imaging.Startup(0)
	defer imaging.Shutdown()

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	customerStore := store.NewCustomerStore(db)
	categoryStore := store.NewCategoryStore(db)
	accessStore := store.NewAccessStore(db)
	orderStore := store.NewOrderStore(db)

	accessResolver := resolver.New(categoryStore, accessStore, customerStore)
	catalogMirror := mirror.New(layout, imaging.VipsResizer{}, categoryStore, cfg.PruneStaleCategories)

	// Optional S3-compatible archive for paid order folders.
	var archive *storage.ArchiveClient
	if cfg.ArchiveConfigured() {
		archive, err = storage.NewArchive(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3ArchiveBucket,
		)
		if err != nil {
			slog.Error("failed to initialize order archive", "error", err)
			os.Exit(1)
		}
		slog.Info("order archive connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3ArchiveBucket,
		)
	} else {
		slog.Warn("order archive not configured — paid orders stay on disk only")
	}

	mailer := mail.New(cfg)
	if !cfg.MailConfigured() {
		slog.Warn("smtp not configured — order emails disabled")
	}

	orderService := orders.NewService(
		orderStore, customerStore, categoryStore,
		accessResolver, orders.NewFolders(layout), mailer, archive,
	)

	// Sync the catalog once at startup so the gallery reflects disk
	// content immediately.
	if result, err := catalogMirror.Sync(); err != nil {
		slog.Error("startup catalog sync failed", "error", err)
	} else {
		slog.Info("startup catalog sync complete",
			"total", result.Total, "new", result.New,
			"updated", result.Updated, "deactivated", result.Deactivated)
	}

	// Login endpoints allow 10 attempts per minute per IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, userStore, customerStore)
	galleryHandlers := handlers.NewGallery(accessResolver, categoryStore, catalogMirror)
	adminHandlers := handlers.NewAdmin(customerStore, accessStore, categoryStore, catalogMirror, layout, valueCache)
	orderHandlers := handlers.NewOrders(orderService, orderStore)

	// Set up the chi router with all middleware and routes.
	r := router.New(sessionStore, loginLimiter, authHandlers, galleryHandlers, adminHandlers, orderHandlers)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate first-view thumbnail generation for large categories.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
