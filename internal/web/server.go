// Package web provides the HTTP server and handlers for the comparison API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/doccompare/internal/config"
	"github.com/JonMunkholm/doccompare/internal/core"
	mw "github.com/JonMunkholm/doccompare/internal/web/middleware"
	"github.com/JonMunkholm/doccompare/internal/workspace"
)

// Server is the HTTP server for the comparison service.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
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
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	s.router.Use(securityHeaders)

	// Reports are opened from other origins, so every origin is accepted
	// unless CORS_ALLOWED_ORIGINS narrows it.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Session folders: reports, copied inputs, annotated images.
	root := s.service.Workspace().Root()
	s.router.Handle(workspace.URLPrefix+"/*",
		http.StripPrefix(workspace.URLPrefix+"/", http.FileServer(http.Dir(root))))

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		// Spreadsheets
		r.Post("/compare_excel", s.handleCompareExcel)
		r.Post("/excel_properties", s.handleExcelProperties)

		// Images; GET with a JSON body is accepted for older clients.
		r.Get("/compare_image", s.handleCompareImage)
		r.Post("/compare_image", s.handleCompareImage)

		// PDF
		r.Post("/compare_pdf", s.handleComparePDF)

		// Sessions
		r.Post("/clean_session", s.handleCleanSession)

		// History
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{sessionID}", s.handleReport)
		r.Get("/reports/{sessionID}/record", s.handleReportRecord)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
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
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Reports pull Bootstrap from jsDelivr, sync their panes with an
		// inline script and may show a remote watermark image.
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; img-src 'self' data: https:; font-src 'self' https://cdn.jsdelivr.net")

		// Reports are embedded by the document viewer; API responses are not.
		if !strings.HasPrefix(r.URL.Path, workspace.URLPrefix+"/") {
			w.Header().Set("X-Frame-Options", "DENY")
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
