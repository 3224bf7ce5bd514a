// Package server hosts the local HTTP API the editor shell talks to. All
// module routes are mounted here along with the health endpoint and the
// websocket event stream.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/logger"
	"github.com/framecut/framecut/internal/modules/modulemanager"
)

// Server wraps the gin router and the underlying http server.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	eventBus   events.EventBus
	logger     hclog.Logger
}

// New builds the router with module routes attached.
func New(eventBus events.EventBus) *Server {
	cfg := config.Get().Server
	log := logger.Named("server")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.EnableCORS {
		router.Use(corsMiddleware())
	}

	s := &Server{
		router:   router,
		eventBus: eventBus,
		logger:   log,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}

	router.GET("/health", s.handleHealth)
	router.GET("/api/events/ws", s.handleEventSocket)
	modulemanager.RegisterRoutes(router)
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	modules := modulemanager.ListModules()
	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID())
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"modules": ids,
	})
}

// corsMiddleware allows the editor shell, which is served from another
// origin during development, to reach the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
