package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anonto42/nano-blog/internal/middleware"
	"github.com/anonto42/nano-blog/internal/router"
	"github.com/anonto42/nano-blog/pkg/config"
	"github.com/anonto42/nano-blog/pkg/firebase"
	"github.com/anonto42/nano-blog/validators"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	writeAuth, err := buildWriteAuth(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize auth", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, logger)
	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)
	e.Use(metrics.Middleware())

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Options{
		DB:             db.Postgres,
		Logger:         logger,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		WriteAuth:      writeAuth,
	})

	if cfg.MetricsPort != "" {
		go serveMetrics(cfg.MetricsPort, logger)
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildWriteAuth(ctx context.Context, cfg *config.Config, logger *zap.Logger) (echo.MiddlewareFunc, error) {
	switch cfg.AuthMode {
	case config.AuthJWT:
		return middleware.JWTAuthMiddleware(cfg.JWTSecret), nil
	case config.AuthFirebase:
		verifier, err := firebase.NewTokenVerifier(ctx, cfg.FirebaseCredentialsPath, logger)
		if err != nil {
			return nil, err
		}
		return middleware.FirebaseAuthMiddleware(verifier), nil
	default:
		return nil, nil
	}
}

func serveMetrics(port string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("metrics listening", zap.String("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
