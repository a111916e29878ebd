package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/biomcp/biomcp/internal/health"
	"github.com/biomcp/biomcp/internal/httpx"
)

const (
	noCacheHeader   = "X-BioMCP-No-Cache"
	shutdownTimeout = 5 * time.Second
)

// HTTPHandler builds the gin router: /mcp (streamable MCP), /health,
// /healthz, and /metrics.
func (s *Server) HTTPHandler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
	})
	r.GET("/health", func(c *gin.Context) {
		apisOnly := c.Query("apis_only") == "true"
		report := health.Run(c.Request.Context(), s.src, s.cacheDir, apisOnly, s.log)
		status := http.StatusOK
		if report.Healthy < report.Total {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.MCPServer()
	}, nil)
	r.Any("/mcp", gin.WrapH(streamable))

	return r
}

// ServeHTTP runs the HTTP server until the context ends, then shuts down
// gracefully.
func (s *Server) ServeHTTP(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.HTTPHandler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("starting MCP HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	}
}

// requestMiddleware tags every request with an ID, honors the no-cache
// header, and logs the outcome.
func (s *Server) requestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)

		ctx := c.Request.Context()
		if c.GetHeader(noCacheHeader) != "" {
			ctx = httpx.WithNoCache(ctx)
		}
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	}
}
