// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"poidash/internal/config"
	"poidash/internal/domain/dashboard"
	"poidash/internal/domain/poi"
	"poidash/internal/server/handlers"
	dashboardService "poidash/internal/service/dashboard"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	source poi.Source,
	bus dashboard.EventBus,
	shares dashboard.ShareStore,
	sessionConfig dashboardService.SessionConfig,
) *Server {
	router := NewRouter(cfg, source, bus, shares, sessionConfig)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// NewRouter builds the routes of the dashboard API
func NewRouter(
	cfg config.ServerConfig,
	source poi.Source,
	bus dashboard.EventBus,
	shares dashboard.ShareStore,
	sessionConfig dashboardService.SessionConfig,
) *chi.Mux {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create handler dependencies
	dashboardHandler := handlers.NewDashboardHandler(source, sessionConfig)
	shareHandler := handlers.NewShareHandler(shares)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			r.With(middleware.Timeout(60*time.Second)).Get("/dashboard", dashboardHandler.GetDashboard)
			r.With(middleware.Timeout(60*time.Second)).Get("/export", dashboardHandler.Export)

			r.Route("/shares", func(r chi.Router) {
				r.Post("/", shareHandler.CreateShare)
				r.Get("/{id}", shareHandler.GetShare)
			})
		})
	})

	// WebSocket endpoint for interactive dashboard sessions
	router.Get("/ws/dashboard", handlers.DashboardWebSocketHandler(source, bus, sessionConfig))

	return router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
