// Package server exposes the advisor over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/engine"
)

// RequestIDHeader carries the per-request session ID.
const RequestIDHeader = "X-Request-ID"

// MessageHeader carries the notice that accompanies an empty CSV result.
const MessageHeader = "X-Advisor-Message"

const shutdownTimeout = 10 * time.Second

// contextKeySession is the gin context key of the request's *engine.Session.
const contextKeySession = "session"

// SetupRoutes builds the gin engine serving the advisor API.
func SetupRoutes(advisor *engine.Advisor, logger *logrus.Logger) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(requestSession(advisor, logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "graviton-advisor",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		v1.GET("/regions", listRegions())
		v1.POST("/ec2/compare", compareEC2())
		v1.POST("/rds/price", priceRDS())
	}

	return r
}

// requestSession gives every request its own engine.Session, tagged with a
// fresh request ID, and logs the request when it completes.
func requestSession(advisor *engine.Advisor, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Header(RequestIDHeader, id)
		c.Set(contextKeySession, advisor.NewSessionWithID(id))

		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("Request served")
	}
}

func sessionFrom(c *gin.Context) *engine.Session {
	return c.MustGet(contextKeySession).(*engine.Session)
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *logrus.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
