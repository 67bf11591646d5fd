package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ghpool-go/internal/config"
	"ghpool-go/internal/github"
	"ghpool-go/internal/middleware"
	"ghpool-go/internal/usage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Server exposes the pool over HTTP: health, metrics, usage snapshots, probe
// triggering and the status/comment relays CI jobs call instead of holding
// tokens themselves.
type Server struct {
	cfg     *config.Config
	client  *github.Client
	tracker *usage.Tracker
	engine  *gin.Engine
	httpSrv *http.Server
}

// New wires the gin engine with middleware and routes.
func New(cfg *config.Config, client *github.Client, tracker *usage.Tracker) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger())

	s := &Server{
		cfg:     cfg,
		client:  client,
		tracker: tracker,
		engine:  engine,
	}
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler; tests serve it directly.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.httpSrv.Addr).Info("server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
