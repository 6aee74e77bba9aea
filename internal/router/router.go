package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/nano-blog/internal/handlers"
	"github.com/anonto42/nano-blog/internal/repositories"
)

// Options carries the dependencies injected into the routes
type Options struct {
	DB             *gorm.DB
	Logger         *zap.Logger
	UploadDir      string
	MaxUploadBytes int64
	// WriteAuth guards every mutating route; nil leaves them open
	WriteAuth echo.MiddlewareFunc
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, opts Options) {
	e.GET("/health", handlers.HealthCheck)

	postRepo := repositories.NewPostgresPostRepository(opts.DB)
	commentRepo := repositories.NewPostgresCommentRepository(opts.DB)

	// Guards are attached per route: Group.Use would also claim unmatched paths
	api := e.Group("")
	var guard []echo.MiddlewareFunc
	if opts.WriteAuth != nil {
		guard = append(guard, opts.WriteAuth)
	}

	postHandler := handlers.NewPostHandler(postRepo)
	postHandler.RegisterPostRoutes(api, guard...)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	commentHandler.RegisterCommentRoutes(api, guard...)

	uploadHandler := handlers.NewUploadHandler(opts.UploadDir, opts.MaxUploadBytes, opts.Logger)
	uploadHandler.RegisterUploadRoutes(api, guard...)

	opts.Logger.Info("routes configured", zap.Bool("write_auth", opts.WriteAuth != nil))
}
