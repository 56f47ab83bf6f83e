package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/mkarpenko/streamhub/internal/config"
	"github.com/mkarpenko/streamhub/internal/logger"
)

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

// Server runs the transport layer until a stop signal arrives.
type Server interface {
	RunServer()
}

func NewServer(mux httpHandler, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(mux, cfg, logger),
		logger:     logger,
	}, nil
}

// RunServer blocks until SIGINT, SIGTERM, or SIGQUIT, then shuts the HTTP
// server down gracefully.
func (s *server) RunServer() {
	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()

		s.httpServer.Shutdown()

		close(idleConnectionsClosed)
	}()

	s.logger.Info().Msg("Launching HTTP server")
	go s.httpServer.RunServer()

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")
}
