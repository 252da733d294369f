//	@title			Chaski Registry API
//	@version		1.0
//	@description	Upload and record gateways for the robotics community registry.
//
//	@host		localhost:3001
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin session token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/chaski/registry/internal/auth"
	"github.com/chaski/registry/internal/config"
	"github.com/chaski/registry/internal/db"
	"github.com/chaski/registry/internal/ledger"
	appMiddleware "github.com/chaski/registry/internal/middleware"
	"github.com/chaski/registry/internal/records"
	"github.com/chaski/registry/internal/recordstore"
	"github.com/chaski/registry/internal/session"
	"github.com/chaski/registry/internal/storage"
	"github.com/chaski/registry/internal/upload"

	_ "github.com/chaski/registry/docs/swagger"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" || cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := newBlobStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("blob store init: %w", err)
	}

	// Upload ledger is optional; handlers get untyped nil when it is off.
	var (
		recorder upload.Recorder
		lister   ledger.Lister
	)
	if cfg.LedgerEnabled() {
		pool, err := db.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("database connection: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			return fmt.Errorf("database migration: %w", err)
		}
		repo := ledger.NewRepository(pool)
		recorder, lister = repo, repo
	} else {
		logger.Info("upload ledger disabled (DATABASE_URL not set)")
	}

	var store recordstore.Store
	if cfg.AirtableConfigured() {
		store = recordstore.NewAirtable(
			cfg.AirtableAPIURL,
			cfg.AirtableBaseID,
			cfg.AirtableAPIKey,
			&http.Client{Timeout: cfg.HTTPClientTimeout},
			logger,
		)
	} else {
		logger.Warn("record store not configured; /saveAirtable will answer 500")
	}

	// Wire dependencies: store → service → handler
	uploadHandler, err := upload.NewHandler(
		upload.NewService(blobs, recorder, logger),
		cfg.UploadDir,
		cfg.UploadMaxBytes,
		logger,
	)
	if err != nil {
		return err
	}
	recordsHandler := records.NewHandler(records.NewService(store, logger))

	authSvc := auth.NewService(cfg)
	authHandler := auth.NewHandler(authSvc, logger)
	ledgerHandler := ledger.NewHandler(lister, logger)
	switch {
	case !cfg.AdminAuthEnabled():
		logger.Warn("ADMIN_PASSWORD not set; every caller has admin rights")
	case cfg.JWTSecretIsDefault():
		logger.Warn("JWT_SECRET not set; signing admin tokens with a random key, sessions end on restart")
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(appMiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(appMiddleware.Session(authSvc, logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI at http://localhost:<port>/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Post("/upload", uploadHandler.Upload)
	r.Post("/saveAirtable", recordsHandler.Save)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/session", authHandler.CreateSession)
		r.With(appMiddleware.RequireCapability(session.AdminPanel)).Get("/uploads", ledgerHandler.Recent)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.AppEnv),
			slog.String("blob_backend", cfg.BlobBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newBlobStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.BlobBackend {
	case config.BackendMinio:
		return storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		}, logger)
	case config.BackendDrive:
		return storage.NewDriveStorage(ctx, cfg.DriveCredentialsFile, cfg.DriveFolderID, logger)
	}
	return nil, fmt.Errorf("unknown BLOB_BACKEND %q (want %s or %s)", cfg.BlobBackend, config.BackendDrive, config.BackendMinio)
}
