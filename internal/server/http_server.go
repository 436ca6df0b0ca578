package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/smukkama/aquasure-server/internal/logger"
	"github.com/smukkama/aquasure-server/pkg/config"
)

// HTTPServer serves the dashboard API
type HTTPServer struct {
	config   *config.HTTPServerConfig
	srv      *http.Server
	listener net.Listener
	log      *logger.Logger
	wg       sync.WaitGroup
}

// NewHTTPServer creates a new HTTP server around handler
func NewHTTPServer(cfg *config.HTTPServerConfig, handler http.Handler, log *logger.Logger) *HTTPServer {
	return &HTTPServer{
		config: cfg,
		log:    log,
		srv: &http.Server{
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start binds the port and serves in the background
func (s *HTTPServer) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	s.listener = listener
	s.log.Info("HTTP server listening", "addr", addr)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop waits for in-flight requests up to the shutdown timeout, then
// closes remaining connections
func (s *HTTPServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn("HTTP server shutdown timed out", "error", err)
		_ = s.srv.Close()
	}

	s.wg.Wait()
	s.log.Info("HTTP server stopped")
}

// Addr returns the bound address, useful when Port is 0
func (s *HTTPServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
