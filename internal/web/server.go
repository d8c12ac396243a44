// Package web provides the HTTP server and handlers for the type sniffing
// API and the HTML sniff report.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/typesniff/internal/config"
	"github.com/JonMunkholm/typesniff/internal/core"
	mw "github.com/JonMunkholm/typesniff/internal/web/middleware"
)

// Server is the HTTP server for the sniffing API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiters []*rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if len(s.cfg.Security.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Security.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
			MaxAge:         300,
		}))
	}

	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	if s.cfg.Rate.Enabled {
		s.router.Use(s.rateLimit(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	analysis := s.analysisMiddleware()

	s.router.Get("/healthz", s.handleHealth)

	// Report pages
	s.router.Get("/report", s.handleReportPage)
	s.router.With(analysis...).Post("/report", s.handleReport)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		// Token classification
		r.Post("/classify", s.handleClassify)
		r.Post("/datetime", s.handleDateTime)
		r.Get("/datetime/formats", s.handleFormats)

		// Document analysis
		r.Group(func(r chi.Router) {
			r.Use(analysis...)
			r.Post("/sniff", s.handleSniff)
			r.Post("/sniff/arrow", s.handleSniffArrow)
			r.Post("/json-schema", s.handleJSONSchema)
			r.Post("/ini", s.handleINI)
			r.Post("/ingest/{table}", s.handleIngest)
		})

		// Profiles
		r.Get("/profiles", s.handleListProfiles)
		r.Get("/profiles/{id}", s.handleGetProfile)
	})
}

// analysisMiddleware applies the stricter per-IP limit to document routes
// and holds an analysis slot for the duration of the request.
func (s *Server) analysisMiddleware() []func(http.Handler) http.Handler {
	var chain []func(http.Handler) http.Handler
	if s.cfg.Rate.Enabled {
		chain = append(chain, s.rateLimit(s.newRateLimiter(s.cfg.Rate.AnalysisLimit, time.Minute)))
	}
	return append(chain, s.analysisSlot)
}

// analysisSlot acquires a slot from the service's analysis limiter.
func (s *Server) analysisSlot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := s.service.Limiter()
		if err := limiter.Acquire(r.Context()); err != nil {
			s.respondError(w, r, err)
			return
		}
		defer limiter.Release()
		next.ServeHTTP(w, r)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("http server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// The report page uses one inline script and inline styles.
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'")
			}

			next.ServeHTTP(w, r)
		})
	}
}
