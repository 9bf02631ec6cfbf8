package server

import (
	"net/http"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/config"
	"github.com/rocketscienceinc/gomoku-backend/pkg/handlers"
)

const readHeaderTimeout = 5 * time.Second

// StartHTTPServer serves the liveness endpoint. Game traffic is
// handled by the external transport layer, not here.
func StartHTTPServer(cfg *config.Config) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", handlers.PingHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return srv.ListenAndServe()
}
