// Package httpapi exposes the gateway's HTTP surface: the registration and
// login endpoints, the bearer-token gateway middleware, and request logging.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/itoqsky/credshield/internal/logging"
	"github.com/itoqsky/credshield/internal/server/services"
)

type Server struct {
	address   string
	logger    logging.Logger
	protocol  *services.ProtocolService
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, p *services.ProtocolService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		protocol:  p,
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the route table. Protected routes sit on a subrouter behind
// the auth middleware; everything passes through request logging and CORS.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	protected := r.PathPrefix("/auth").Subrouter()
	protected.Use(s.authMiddleware)
	protected.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)

	return cors.AllowAll().Handler(r)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
