// Package api exposes the session boundary over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/socratutor/internal/session"
)

// Server represents the API server
type Server struct {
	echo     *echo.Echo
	port     int
	sessions *session.Manager
}

// NewServer creates a new API server
func NewServer(port int, sessions *session.Manager) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:     e,
		port:     port,
		sessions: sessions,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// API v1 group
	v1 := s.echo.Group("/api/v1")

	// Session endpoints
	v1.GET("/sessions", s.listSessions)
	v1.POST("/sessions", s.createSession)
	v1.GET("/sessions/:id", s.getSession)
	v1.POST("/sessions/:id/messages", s.postMessage)
	v1.DELETE("/sessions/:id", s.closeSession)
}

// Start begins the API server and blocks until an interrupt arrives.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.sessions.CloseAll(ctx)
	return s.echo.Shutdown(ctx)
}
