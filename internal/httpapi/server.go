package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/creasty/defaults"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"macro-signal/internal/indicator"
)

// Config holds listener and middleware settings. Zero fields with a
// default tag are filled in by NewServer.
type Config struct {
	Host            string
	Port            int `default:"3000"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration `default:"10s"`
	CORS            bool
	StaticDir       string
	DefaultPeriod   indicator.Period `default:"1y"`
}

// MetricsSource exposes a scrape handler and records requests.
type MetricsSource interface {
	requestRecorder
	Handler() http.Handler
}

// Server wraps the echo instance.
type Server struct {
	echo   *echo.Echo
	cfg    Config
	logger zerolog.Logger
}

// NewServer builds the HTTP surface. metrics may be nil.
func NewServer(cfg Config, p Pipeline, metrics MetricsSource, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "http").Logger()
	if err := defaults.Set(&cfg); err != nil {
		logger.Warn().Err(err).Msg("apply server config defaults")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	var rec requestRecorder
	if metrics != nil {
		rec = metrics
	}
	e.Use(requestID())
	e.Use(requestLogging(logger, rec))
	e.Use(recoverJSON(logger))
	if cfg.CORS {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
		}))
	}

	NewHandler(p, cfg.DefaultPeriod, logger).RegisterRoutes(e)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}
	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}

	return &Server{echo: e, cfg: cfg, logger: logger}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
