// Package api serves Nebula sessions over HTTP and pushes turn, metrics and
// resource events over a WebSocket.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/config"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/session"
)

// Server timeouts.
const (
	ReadTimeout  = 15 * time.Second
	WriteTimeout = 30 * time.Second
	IdleTimeout  = 60 * time.Second
)

// Server is the HTTP API server.
type Server struct {
	cfg        config.APIConfig
	router     *Router
	hub        *Hub
	resources  *ResourcesHandler
	httpServer *http.Server

	// mu protects server state
	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
}

// NewServer builds a server over manager and registers every route.
// A nil sampler reads the host through gopsutil.
func NewServer(cfg *config.Config, manager *session.Manager, sampler ResourceSampler) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:       cfg.API,
		router:    NewRouter(),
		hub:       NewHub(),
		resources: NewResourcesHandler(sampler),
	}

	NewSessionsHandler(manager, s.hub).RegisterRoutes(s.router)
	NewConfigHandler(cfg).RegisterRoutes(s.router)
	s.resources.RegisterRoutes(s.router)
	NewWebSocketHandler(s.hub).RegisterRoutes(s.router)
	s.router.GET("/api/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"sessions": manager.Len(),
			"clients":  s.hub.ClientCount(),
		})
	})

	return s
}

// Address returns host:port.
func (s *Server) Address() string {
	return s.cfg.Address()
}

// Router returns the route table.
func (s *Server) Router() *Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	middlewares := []Middleware{RecoveryMiddleware, RequestIDMiddleware}
	if s.cfg.EnableLogging {
		middlewares = append(middlewares, LoggingMiddleware)
	}
	if len(s.cfg.CORSOrigins) > 0 {
		middlewares = append(middlewares, CORSMiddleware(s.cfg.CORSOrigins))
		SetUpgraderCheckOrigin(makeOriginChecker(s.cfg.CORSOrigins))
	}
	return Chain(s.router, middlewares...)
}

// Start runs the hub, the resource publisher and the listener, returning
// once the listener is up or has failed to bind.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	s.httpServer = &http.Server{
		Addr:         s.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.hub.Run()
	go s.resources.Publish(ctx, s.hub, s.cfg.ResourceInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[api] Starting server on %s", s.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[api] Server error: %v", err)
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		cancel()
		s.hub.Stop()
		return fmt.Errorf("server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		s.running = true
		return nil
	}
}

// Shutdown stops the publisher and the hub, then drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	log.Printf("[api] Shutting down server...")
	s.running = false
	s.cancel()
	s.hub.Stop()
	return s.httpServer.Shutdown(ctx)
}

// IsRunning reports whether Start succeeded and Shutdown has not run.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
