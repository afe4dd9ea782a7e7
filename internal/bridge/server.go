package bridge

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Dress13/homebridge-bose-soundtouch/internal/logging"
)

const (
	// shutdownTimeout bounds how long Shutdown waits for in-flight
	// requests before forcing the listener closed.
	shutdownTimeout = 10 * time.Second

	readHeaderTimeout = 10 * time.Second
)

// Server owns the lifecycle of the device manager and the REST listener.
type Server struct {
	manager *Manager
	httpSrv *http.Server
}

// NewServer builds a bridge server listening on addr.
func NewServer(addr string, manager *Manager) *Server {
	return &Server{
		manager: manager,
		httpSrv: &http.Server{
			Addr:              addr,
			Handler:           NewAPI(manager),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Start brings up the device controllers and the HTTP listener, then blocks
// until a shutdown signal arrives or the listener fails.
func (s *Server) Start() error {
	s.manager.Start()

	logging.Info("Bridge API listening", zap.String("addr", s.httpSrv.Addr))

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		err := s.httpSrv.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		errChan <- err
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping bridge...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.manager.Stop()
		logging.Sync()
		if err != nil {
			return fmt.Errorf("bridge listener failed: %w", err)
		}
		return nil
	}
}

// Shutdown drains in-flight requests, disconnects every device, and flushes
// the logger.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down bridge...")

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		logging.Error("Error draining HTTP listener", zap.Error(err))
	}

	s.manager.Stop()

	logging.Sync()
	return nil
}
