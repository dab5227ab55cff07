// Package http provides the HTTP API for docchat.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docchat/internal/docqa"
	"github.com/fyrsmithlabs/docchat/internal/logging"
)

// Server provides HTTP endpoints for docchat.
type Server struct {
	echo    *echo.Echo
	svc     docqa.Service
	logger  *logging.Logger
	config  *Config
	tracer  trace.Tracer
	metrics *HTTPMetrics
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	ServiceName     string
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewServer creates a new HTTP server.
func NewServer(svc docqa.Service, logger *logging.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
			ServiceName:     "docchat",
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	s := &Server{
		echo:    e,
		svc:     svc,
		logger:  logger.Named("http"),
		config:  cfg,
		tracer:  otel.Tracer(httpInstrumentationName),
		metrics: NewHTTPMetrics(logger),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(corsMiddleware())
	e.Use(s.metrics.MetricsMiddleware())
	e.Use(s.requestContext)

	s.registerRoutes()

	return s, nil
}

// corsMiddleware allows every origin, method and header, with credentials.
// Echo reflects the request Origin when credentials are allowed.
func corsMiddleware() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowCredentials:                         true,
		UnsafeWildcardOriginWithAllowCredentials: true,
	})
}

// requestContext starts a span for the request, puts the request id into
// the request context for logging and logs the request once it completes.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		ctx, span := s.tracer.Start(req.Context(), req.Method+" "+routeOf(c),
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		ctx = logging.WithRequestID(ctx, requestID)
		c.SetRequest(req.WithContext(ctx))

		err := next(c)
		if err != nil {
			// Let echo write the error now so the logged status is final.
			c.Error(err)
		}

		status := c.Response().Status
		span.SetAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.route", routeOf(c)),
			attribute.Int("http.status_code", status),
		)

		s.logger.Info(ctx, "http request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		)

		return nil
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.POST("/upload", s.handleUpload)
	s.echo.POST("/chat", s.handleChat)
	s.echo.GET("/sessions/:id", s.handleSession)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// UploadResponse is the response body for POST /upload.
type UploadResponse struct {
	Status string   `json:"status"`
	Files  []string `json:"files"`
}

// UploadForm holds the parts of a POST /upload multipart form. SessionID is
// a pointer so an absent field can be told apart from an empty one.
type UploadForm struct {
	SessionID *string                 `form:"session_id" validate:"required"`
	Files     []*multipart.FileHeader `form:"files" validate:"required"`
}

// newUploadForm picks the fields of f that POST /upload reads.
func newUploadForm(f *multipart.Form) UploadForm {
	var uf UploadForm
	if ids := f.Value["session_id"]; len(ids) > 0 {
		uf.SessionID = &ids[0]
	}
	uf.Files = f.File["files"]
	return uf
}

// ChatRequest is the request body for POST /chat. Absent or null fields
// are passed on as empty strings.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// ChatResponse is the response body for POST /chat.
type ChatResponse = docqa.ChatResult

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: s.config.ServiceName})
}

// handleUpload stores the multipart "files" parts on the session named by
// the "session_id" form field.
func (s *Server) handleUpload(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := c.MultipartForm()
	if err != nil {
		s.logger.Warn(ctx, "invalid upload request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	uf := newUploadForm(form)
	if err := c.Validate(&uf); err != nil {
		return err
	}

	files := make([]docqa.File, len(uf.Files))
	for i, fh := range uf.Files {
		files[i] = multipartFile(fh)
	}

	names, err := s.svc.Upload(ctx, *uf.SessionID, files)
	if err != nil {
		if errors.Is(err, docqa.ErrNoFiles) {
			return echo.NewHTTPError(http.StatusBadRequest, "files field is required")
		}
		s.logger.Error(ctx, "upload failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store uploaded files")
	}

	return c.JSON(http.StatusOK, UploadResponse{Status: "ok", Files: names})
}

func multipartFile(fh *multipart.FileHeader) docqa.File {
	return docqa.File{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// handleChat answers a query for a session.
func (s *Server) handleChat(c echo.Context) error {
	ctx := c.Request().Context()

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(ctx, "invalid chat request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := s.svc.Chat(ctx, req.SessionID, req.Query)
	if err != nil {
		s.logger.Error(ctx, "chat failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to answer query")
	}

	return c.JSON(http.StatusOK, res)
}

// handleSession returns a read-only snapshot of a session.
func (s *Server) handleSession(c echo.Context) error {
	snap, err := s.svc.Session(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, docqa.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read session")
	}
	return c.JSON(http.StatusOK, snap)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully within the configured timeout.
//
// Returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Addr()
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "starting http server", zap.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return http.ErrServerClosed
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
