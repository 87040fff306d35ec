// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the tool operations over HTTP. Each tool is a
// POST endpoint under /tool/ accepting a JSON request and answering with
// the tool envelope. Transport-level rejections are limited to malformed
// request bodies, which come back as HTTP 400 carrying the operation's
// failure status; everything else is HTTP 200 with a terminal status in
// the body.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

const (
	defaultAddr        = ":8080"
	defaultToolTimeout = 3 * time.Minute
	shutdownTimeout    = 10 * time.Second
)

// Toolset executes the tool operations. Satisfied by tools.Orchestrator.
type Toolset interface {
	Fetch(ctx context.Context, req types.FetchRequest) types.FetchResponse
	Summarize(ctx context.Context, req types.SummarizeRequest) types.SummarizeResponse
	Citations(ctx context.Context, req types.CitationsRequest) types.CitationsResponse
}

// Server serves the tool endpoints.
type Server struct {
	cfg     types.ServerConfig
	toolset Toolset
	log     *logrus.Logger
	engine  *gin.Engine
}

// New builds a Server. A nil logger discards all log output.
func New(cfg types.ServerConfig, toolset Toolset, log *logrus.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	s := &Server{cfg: cfg, toolset: toolset, log: log}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLog())

	engine.GET("/healthz", s.health)

	tool := engine.Group("/tool")
	tool.POST("/fetch_articles", s.fetchArticles)
	tool.POST("/summarize_abstracts", s.summarizeAbstracts)
	tool.POST("/format_citations", s.formatCitations)
	return engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("tool server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down tool server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) fetchArticles(c *gin.Context) {
	var req types.FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindFailure(types.StatusFetchFailed, err))
		return
	}
	ctx, cancel := s.toolContext(c)
	defer cancel()
	c.JSON(http.StatusOK, s.toolset.Fetch(ctx, req))
}

func (s *Server) summarizeAbstracts(c *gin.Context) {
	var req types.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindFailure(types.StatusSummaryFailed, err))
		return
	}
	ctx, cancel := s.toolContext(c)
	defer cancel()
	c.JSON(http.StatusOK, s.toolset.Summarize(ctx, req))
}

func (s *Server) formatCitations(c *gin.Context) {
	var req types.CitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindFailure(types.StatusFormatFailed, err))
		return
	}
	ctx, cancel := s.toolContext(c)
	defer cancel()
	c.JSON(http.StatusOK, s.toolset.Citations(ctx, req))
}

// toolContext bounds one tool invocation so a stalled external service
// cannot hang the request forever.
func (s *Server) toolContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.ToolTimeout
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).Round(time.Millisecond).String(),
		}).Info("request handled")
	}
}

func bindFailure(status types.Status, err error) types.ToolResponse {
	return types.ToolResponse{Status: status, Message: fmt.Sprintf("invalid request body: %v", err)}
}
