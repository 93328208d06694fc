package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stip-taxii-backend/internal/api/handlers"
	apimiddleware "stip-taxii-backend/internal/api/middleware"
	"stip-taxii-backend/internal/config"
	"stip-taxii-backend/pkg/logger"
)

// Router holds dependencies for the operational API router. The TAXII wire
// protocol is served elsewhere; this surface is health, readiness and
// diagnostics only.
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/services", r.handlers.Topology.ListServices)
		api.Get("/services/{service_id}/collections", r.handlers.Topology.ListCollections)
		api.Get("/stats", r.handlers.Stats.Get)
		api.Post("/accounts", r.handlers.Accounts.Create)
		api.Post("/accounts/verify", r.handlers.Accounts.Verify)
	})

	return router
}
