// Package api serves compositions over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server represents the API server
type Server struct {
	router *gin.Engine
	addr   string
	root   string
	log    *zap.Logger
}

// NewServer creates a server answering on addr. Manifest paths in requests
// are resolved inside root.
func NewServer(addr, root string, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		addr:   addr,
		root:   root,
		log:    log,
	}
	s.SetupRoutes()
	return s
}

// SetupRoutes configures all API routes
func (s *Server) SetupRoutes() {
	s.router.GET("/health", s.HealthHandler)
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/version", s.VersionHandler)
		v1.POST("/compose", s.ComposeHandler)
	}
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("api listening", zap.String("addr", s.addr), zap.String("root", s.root))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// GetRouter returns the gin router (for testing)
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
