// Package api provides the HTTP surface of the DriftPix server: image
// draws, gallery management, tags, reports, and health.
package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/driftpix/driftpix-server/internal/config"
	"github.com/driftpix/driftpix-server/internal/kv"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/ratelimit"
	"github.com/driftpix/driftpix-server/internal/store/sqlite"
	"github.com/driftpix/driftpix-server/internal/validation"
)

// apiVersion is stamped into request log rows.
const apiVersion = "1.0.0"

// Server holds dependencies for the HTTP handlers.
type Server struct {
	store      *sqlite.Store
	kv         kv.Store
	services   *Services
	limiter    *ratelimit.WindowLimiter
	router     *chi.Mux
	api        huma.API
	validator  *validation.Validator
	logger     *logger.Logger
	cdnBaseURL string
}

// NewServer creates the HTTP server with all routes configured. The
// limiter may be nil to disable inbound rate limiting (tests).
func NewServer(cfg *config.Config, st *sqlite.Store, kvStore kv.Store, services *Services, limiter *ratelimit.WindowLimiter, log *logger.Logger) *Server {
	s := &Server{
		store:      st,
		kv:         kvStore,
		services:   services,
		limiter:    limiter,
		router:     chi.NewRouter(),
		validator:  validation.New(),
		logger:     log,
		cdnBaseURL: cfg.CDN.BaseURL,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("DriftPix API", apiVersion)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerSearchRoutes()
	s.registerGalleryRoutes()
	s.registerTagRoutes()
	s.registerReportRoutes()
	s.registerHealthRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack. Order matters: the
// client IP must be resolved before rate limiting, and request logging
// wraps everything so denied requests show up in the access log too.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(s.clientContext)
	s.router.Use(s.requestLog)
	s.router.Use(s.rateLimit)
}
