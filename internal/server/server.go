package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/danmuck/evlctl/internal/observability"
)

const shutdownTimeout = 5 * time.Second

// Config controls the status server. A non-empty Token is required as a
// bearer token on every route except /health.
type Config struct {
	Addr        string
	CorsOrigins []string
	Token       string
}

// Server is the read-only HTTP status surface over a Tracker.
type Server struct {
	cfg     Config
	tracker *Tracker
	logger  zerolog.Logger
	router  *gin.Engine
	started time.Time
}

func New(cfg Config, tracker *Tracker, logger zerolog.Logger) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.HTTPObserver(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:     cfg,
		tracker: tracker,
		logger:  logger,
		router:  r,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("status server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
