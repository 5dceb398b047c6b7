// Package server exposes the service's HTTP surface: case generation,
// the provider webhook endpoint, tracker queries, health, and metrics.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bondpacket/internal/common/config"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/webhook"
)

type Server struct {
	cfg  config.ServerConfig
	http *http.Server
	log  logger.Logger
}

// New wires the route table. The webhook handler is mounted as-is; the
// generation and tracker routes go through Handler.
func New(cfg config.ServerConfig, h *Handler, wh *webhook.Handler, log logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/cases/generate", h.Generate)
	mux.HandleFunc("GET /api/v1/cases/{caseNumber}/trackers", h.ListTrackers)
	mux.Handle("POST /api/v1/webhooks", wh)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      mux,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
		},
		log: log,
	}
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
