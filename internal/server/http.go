package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/mkarpenko/streamhub/internal/config"
	"github.com/mkarpenko/streamhub/internal/logger"
)

type httpHandler = http.Handler

type httpServer struct {
	server *http.Server
	logger *logger.Logger
}

func newHTTPServer(mux httpHandler, cfg config.Server, logger *logger.Logger) *httpServer {
	return &httpServer{
		server: &http.Server{
			Addr:         cfg.HTTPAddress,
			Handler:      mux,
			ReadTimeout:  cfg.RequestTimeout,
			WriteTimeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

func (h *httpServer) RunServer() {
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.logger.Err(err).Msg("HTTP server ListenAndServe")
	}
}

func (h *httpServer) Shutdown() {
	if err := h.server.Shutdown(context.Background()); err != nil {
		h.logger.Err(err).Msg("HTTP server Shutdown")
	}
}
