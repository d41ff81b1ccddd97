package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/config"
	"github.com/geocoding-microservice/internal/delivery/http/handler"
	"github.com/geocoding-microservice/internal/delivery/http/middleware"
	apperrors "github.com/geocoding-microservice/internal/pkg/errors"
)

// Server wraps the Fiber application and its route wiring.
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	geocodeHandler *handler.GeocodeHandler
	statsHandler   *handler.StatsHandler

	healthCheck func(ctx context.Context) error
}

// NewServer builds the Fiber app with middlewares and routes.
// healthCheck probes the cache backend and may be nil when the
// in-memory backend is active.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	geocodeHandler *handler.GeocodeHandler,
	statsHandler *handler.StatsHandler,
	healthCheck func(ctx context.Context) error,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Geocoding Microservice",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		geocodeHandler: geocodeHandler,
		statsHandler:   statsHandler,
		healthCheck:    healthCheck,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")

	api.Get("/health", s.handleHealth)

	api.Get("/geocode", s.geocodeHandler.Geocode)
	api.Post("/reverse-geocode", s.geocodeHandler.ReverseGeocode)
	api.Post("/batch/geocode", s.geocodeHandler.BatchGeocode)
	api.Delete("/cache", s.geocodeHandler.InvalidateCache)

	api.Get("/stats", s.statsHandler.GetStats)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	status := "healthy"
	cacheStatus := "ok"

	if s.healthCheck != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := s.healthCheck(ctx); err != nil {
			status = "degraded"
			cacheStatus = err.Error()
		}
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"cache":  cacheStatus,
		"time":   time.Now().UTC(),
	})
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown performs a graceful shutdown bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := "INTERNAL_SERVER_ERROR"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			code = appErr.StatusCode
			errCode = appErr.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    errCode,
				"message": err.Error(),
			},
		})
	}
}
