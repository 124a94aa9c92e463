// Package health exposes the operational HTTP surface: liveness, readiness
// and Prometheus metrics. It runs beside the gateway connection so process
// managers can probe the bot.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/pkg/config"
	"github.com/pradiptars/clan-storage-bot/pkg/metrics"
	"github.com/pradiptars/clan-storage-bot/pkg/middleware/requestid"
)

type connectivity interface {
	Connected() bool
}

// Server wraps the gin engine and its listener.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New builds the ops server.
func New(cfg *config.Config, store connectivity, m *metrics.Metrics, logger *zap.Logger) *Server {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if !store.Connected() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(m.Handler()))

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
			Handler: r,
		},
		logger: logger,
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() {
	s.logger.Info("health server starting", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("health server failed", zap.Error(err))
	}
}

// Shutdown drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func requestLogger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if reqID := requestid.Value(c); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}

		l.Info("http_request", fields...)
	}
}
