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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"creatorpulse/internal/config"
	"creatorpulse/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// Options carries the optional dependencies of the server
type Options struct {
	// Subscriber enables the recommendation websocket when set
	Subscriber  handlers.Subscriber
	EventsTopic string
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	recommendations handlers.RecommendationService,
	opts Options,
	logger *logrus.Entry,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", handlers.UserIDHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	recommendationHandler := handlers.NewRecommendationHandler(recommendations, logger)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Route("/uploads", func(r chi.Router) {
				r.Post("/", recommendationHandler.Upload)
				r.Delete("/", recommendationHandler.DeleteUploads)
			})

			r.Route("/recommendations", func(r chi.Router) {
				r.Get("/", recommendationHandler.GetRecommendations)
				r.Delete("/cache", recommendationHandler.ClearCache)
			})

			r.Post("/analyze", recommendationHandler.Analyze)
			r.Get("/analytics/overview", recommendationHandler.GetOverview)
		})
	})

	router.Handle("/metrics", promhttp.Handler())

	// WebSocket endpoint for live recommendation events
	if opts.Subscriber != nil {
		router.Get("/ws/recommendations", handlers.RecommendationWebSocketHandler(opts.Subscriber, opts.EventsTopic, logger))
	}

	// Create HTTP server
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

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
