// Package server provides the HTTP API for renovad: an SSE chat
// endpoint driving the turn orchestrator, knowledge-base ingestion,
// health, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/renovad/internal/orchestrator"
	"github.com/fyrsmithlabs/renovad/internal/retrieval"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server provides HTTP endpoints for renovad.
type Server struct {
	echo   *echo.Echo
	orch   *orchestrator.Orchestrator
	kb     *retrieval.Store
	logger *zap.Logger
	config *Config

	// sessions serializes turns per session; turns across sessions
	// run concurrently.
	sessions sync.Map
}

// NewServer creates a new HTTP server. kb may be nil; knowledge
// ingestion is then unavailable.
func NewServer(orch *orchestrator.Orchestrator, kb *retrieval.Store, logger *zap.Logger, cfg *Config) (*Server, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8780,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
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
	})

	s := &Server{
		echo:   e,
		orch:   orch,
		kb:     kb,
		logger: logger,
		config: cfg,
	}

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/chat", s.handleChat)
	v1.POST("/knowledge", s.handleKnowledge)
}

// ChatRequest is the request body for POST /api/v1/chat.
type ChatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// streamEvent is one SSE payload. Orchestrator events are embedded;
// the start/end frames carry only type and session id.
type streamEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	orchestrator.Event
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleChat runs one turn and streams its events as SSE frames.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid chat request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message field is required")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.UserID == "" {
		req.UserID = req.SessionID
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	s.writeEvent(resp, streamEvent{Type: "stream_start", SessionID: req.SessionID})

	// One turn at a time per session; the orchestrator relies on it.
	unlock := s.lockSession(req.SessionID)
	err := s.orch.ProcessTurn(c.Request().Context(), orchestrator.TurnRequest{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Message:   req.Message,
	}, func(ev orchestrator.Event) {
		s.writeEvent(resp, streamEvent{Type: ev.Type, Event: ev})
	})
	unlock()

	if err != nil {
		// The orchestrator already emitted a user-visible error event.
		s.logger.Error("turn failed",
			zap.String("session_id", req.SessionID), zap.Error(err))
	}

	s.writeEvent(resp, streamEvent{Type: "stream_end", SessionID: req.SessionID})
	return nil
}

func (s *Server) writeEvent(resp *echo.Response, ev streamEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("encoding stream event failed", zap.Error(err))
		return
	}
	fmt.Fprintf(resp, "data: %s\n\n", payload)
	resp.Flush()
}

func (s *Server) lockSession(sessionID string) func() {
	mu, _ := s.sessions.LoadOrStore(sessionID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

// KnowledgeRequest is the request body for POST /api/v1/knowledge.
type KnowledgeRequest struct {
	Documents []KnowledgeDocument `json:"documents"`
}

// KnowledgeDocument is one knowledge-base entry to ingest.
type KnowledgeDocument struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// KnowledgeResponse is the response body for POST /api/v1/knowledge.
type KnowledgeResponse struct {
	Added int `json:"added"`
}

// handleKnowledge ingests documents into the knowledge base.
func (s *Server) handleKnowledge(c echo.Context) error {
	if s.kb == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "knowledge base is disabled")
	}

	var req KnowledgeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid knowledge request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Documents) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "documents field is required")
	}

	docs := make([]retrieval.Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		if d.Content == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "document content is required")
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		docs = append(docs, retrieval.Document{ID: d.ID, Content: d.Content, Metadata: d.Metadata})
	}
	if err := s.kb.Add(c.Request().Context(), docs); err != nil {
		s.logger.Error("knowledge ingestion failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store documents")
	}

	return c.JSON(http.StatusOK, KnowledgeResponse{Added: len(docs)})
}

// Start starts the HTTP server.
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
