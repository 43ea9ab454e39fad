// Package server exposes unit conversion over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/ajitpratap0/uniunit/pkg/config"
	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/uniunit"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

// DefaultMaxBodyBytes caps request bodies when the configuration does not.
const DefaultMaxBodyBytes = 1 << 20

// Options are the dependencies of a Server.
type Options struct {
	Registry *units.Registry
	Presets  *uniunit.Presets
	// Aliases is served by /api/chinese-units
	Aliases map[string]string
	Metrics config.MetricsConfig
	Logger  *zap.Logger
}

// Server is the uniunit HTTP API.
type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	logger  *zap.Logger
}

// New builds the route table and middleware chain for cfg.
func New(cfg config.ServerConfig, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "http_server"))

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()
	h := &Handler{
		registry:     opts.Registry,
		presets:      opts.Presets,
		aliases:      opts.Aliases,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       log,
	}
	h.Routes(mux)
	if opts.Metrics.Enabled {
		mux.Handle("GET "+opts.Metrics.Path, metricsHandler())
	}

	middlewares := []func(http.Handler) http.Handler{
		RequestID,
		AccessLog(log),
	}
	if cfg.RateLimit.Enabled {
		limiter := NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.ClientTTL)
		middlewares = append(middlewares, RateLimit(limiter, log))
	}
	if cfg.EnableGzip {
		middlewares = append(middlewares, Gzip)
	}
	middlewares = append(middlewares, Tracing, Metrics, RouteSpanName)

	return &Server{
		cfg:     cfg,
		handler: Chain(mux, middlewares...),
		logger:  log,
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to listen").WithDetail("address", s.cfg.Address)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("address", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, errors.ErrorTypeInternal, "http server failed")
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down http server", zap.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "graceful shutdown failed")
	}
	<-errCh
	return nil
}
