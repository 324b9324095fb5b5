package api

import (
	"context"
	"net/http"
	"time"

	"coinbank/application"
	"coinbank/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// Server is the HTTP front of the ledger. It owns no state beyond its
// dependencies; all ledger semantics live in the application layer.
type Server struct {
	cfg      *config.Config
	ledger   *application.Ledger
	registry *application.Registry
	validate *validator.Validate

	httpServer *http.Server
}

// NewServer wires the router and returns a server ready to listen.
func NewServer(cfg *config.Config, ledger *application.Ledger, registry *application.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		ledger:   ledger,
		registry: registry,
		validate: validator.New(),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router builds the route tree. Exposed separately so tests can mount it
// on httptest servers.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/servers/register", s.handleRegister)

		r.Route("/currency", func(r chi.Router) {
			r.Use(s.requireAllowedIP)

			r.Post("/login", s.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)

				r.Get("/balance", s.handleBalance)
				r.Post("/deposit", s.handleDeposit)
				r.Post("/withdraw", s.handleWithdraw)
				r.Post("/pay", s.handlePay)
				r.Post("/daily", s.handleDaily)
				r.Get("/top", s.handleTop)
			})
		})
	})

	return r
}

// Start begins serving and blocks until the listener fails or is closed.
func (s *Server) Start() error {
	log.WithField("addr", s.cfg.ListenAddr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
