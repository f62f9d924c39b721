// Package http provides the HTTP API for assistd.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smarslabs/assistd/internal/assistant"
	"github.com/smarslabs/assistd/internal/config"
	"github.com/smarslabs/assistd/internal/session"
)

// userIDKey is the echo context key the auth middleware stores the resolved
// user id under.
const userIDKey = "assistd.user_id"

// Asker answers questions. Satisfied by *assistant.Service.
type Asker interface {
	Ask(ctx context.Context, userID, question string) (*assistant.Answer, error)
}

// Sessions resolves bearer tokens. Satisfied by *session.Store.
type Sessions interface {
	Resolve(token string) (string, error)
}

// Server provides HTTP endpoints for assistd.
type Server struct {
	echo     *echo.Echo
	asker    Asker
	sessions Sessions
	logger   *zap.Logger
	config   config.ServerConfig
}

// NewServer creates the HTTP server with its middleware and routes.
func NewServer(asker Asker, sessions Sessions, logger *zap.Logger, cfg config.ServerConfig) (*Server, error) {
	if asker == nil {
		return nil, fmt.Errorf("asker is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session resolver is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(metricsMiddleware())

	s := &Server{
		echo:     e,
		asker:    asker,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
	}
	s.registerRoutes()

	return s, nil
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.Use(s.requireSession)
	v1.POST("/chat/ask", s.handleAsk)
}

// requireSession resolves the bearer token and stores the user id in the
// request context. Missing or unknown tokens get 401.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing bearer token"})
		}

		userID, err := s.sessions.Resolve(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid session"})
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

// AskRequest is the request body for POST /api/v1/chat/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleAsk answers a question for the authenticated user.
func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid ask request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	userID, _ := c.Get(userIDKey).(string)

	answer, err := s.asker.Ask(c.Request().Context(), userID, req.Question)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuestion) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "question is required",
				Details: err.Error(),
			})
		}
		s.logger.Error("ask failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to answer question",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, answer)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

var _ Sessions = (*session.Store)(nil)
