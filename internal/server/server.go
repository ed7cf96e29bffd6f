// Package server exposes the Gatedesk HTTP API and the display event stream.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/gatedesk/internal/notify"
	"github.com/zulandar/gatedesk/internal/queue"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Engine *queue.Engine
	Hub    *notify.Hub
	Port   int
	Out    io.Writer
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Engine == nil {
		return fmt.Errorf("server: engine is required")
	}
	if opts.Hub == nil {
		return fmt.Errorf("server: hub is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, opts.Engine, opts.Hub)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Gatedesk listening at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// registerRoutes sets up the API routes on the Gin router.
func registerRoutes(router *gin.Engine, eng *queue.Engine, hub *notify.Hub) {
	api := router.Group("/api")
	api.POST("/appointments", handleCreate(eng))
	api.GET("/appointments", handleList(eng))
	api.POST("/outbound/:id", handleOutbound(eng))
	api.GET("/status", handleStatus(eng))
	api.GET("/history", handleHistory(eng))
	api.GET("/health", handleHealth(eng))
	api.GET("/events", handleEvents(eng, hub))
}
