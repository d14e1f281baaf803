// Package http serves the pestid JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/pestid/internal/chat"
	"github.com/fyrsmithlabs/pestid/internal/identify"
	"github.com/fyrsmithlabs/pestid/internal/location"
	"github.com/fyrsmithlabs/pestid/internal/logging"
	"github.com/fyrsmithlabs/pestid/internal/tracking"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Identifier diagnoses an uploaded image.
type Identifier interface {
	Identify(ctx context.Context, img identify.Image, opts identify.Options) (*identify.Result, error)
}

// Tracker manages treatment history.
type Tracker interface {
	Create(ctx context.Context, e tracking.Entry) (string, error)
	List(ctx context.Context) ([]tracking.Entry, error)
	Search(ctx context.Context, term string) ([]tracking.Entry, error)
	Get(ctx context.Context, id string) (tracking.Entry, error)
}

// Chatter answers chat messages.
type Chatter interface {
	Reply(ctx context.Context, req chat.Request) (chat.Reply, error)
}

// Locator resolves the location of the client at clientIP.
type Locator interface {
	Lookup(ctx context.Context, clientIP string) location.Info
}

// Deps are the services behind the API.
type Deps struct {
	Identify Identifier
	Tracking Tracker
	Chat     Chatter
	Location Locator
}

func (d Deps) validate() error {
	switch {
	case d.Identify == nil:
		return errors.New("identify service is required")
	case d.Tracking == nil:
		return errors.New("tracking service is required")
	case d.Chat == nil:
		return errors.New("chat service is required")
	case d.Location == nil:
		return errors.New("location client is required")
	}
	return nil
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// BodyLimit caps request bodies, e.g. "10M". Empty disables the limit.
	BodyLimit string
	Version   string
}

// Server provides the HTTP endpoints.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	logger *logging.Logger
	config *Config
}

// NewServer creates a new HTTP server.
func NewServer(deps Deps, logger *logging.Logger, cfg *Config) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:      "localhost",
			Port:      8088,
			BodyLimit: "10M",
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		deps:   deps,
		logger: logger,
		config: cfg,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestContext)
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	e.Use(NewHTTPMetrics(logger.Underlying()).MetricsMiddleware())

	s.registerRoutes()
	return s, nil
}

// requestContext carries the request id and logger in the request context
// and logs each request when it completes.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		ctx := logging.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
		ctx = logging.WithLogger(ctx, s.logger)
		c.SetRequest(req.WithContext(ctx))

		err := next(c)

		status := c.Response().Status
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		}

		s.logger.Info(ctx, "http request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/identify", s.handleIdentify)

	v1.POST("/tracking", s.handleCreateTracking)
	v1.GET("/tracking", s.handleListTracking)
	v1.GET("/tracking/:id", s.handleGetTracking)

	v1.POST("/chat", s.handleChat)

	v1.GET("/location", s.handleLocation)
	v1.POST("/location", s.handleSelectLocation)
	v1.GET("/location/countries", s.handleCountries)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "pestid",
		Version: s.config.Version,
	})
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	addr := s.Address()
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
