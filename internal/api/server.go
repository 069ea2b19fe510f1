package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Server wraps the HTTP server and its routes.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the HTTP server listening on the given port.
func NewServer(port string, handlers *Handlers) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/packs", handlers.ListPacks)
	mux.HandleFunc("GET /api/packs/installed", handlers.ListInstalled)
	mux.HandleFunc("GET /api/packs/{id}", handlers.GetPack)
	mux.HandleFunc("POST /api/packs/{id}/download", handlers.StartDownload)
	mux.HandleFunc("POST /api/packs/{id}/pause", handlers.PauseDownload)
	mux.HandleFunc("POST /api/packs/{id}/resume", handlers.ResumeDownload)
	mux.HandleFunc("POST /api/packs/{id}/cancel", handlers.CancelDownload)
	mux.HandleFunc("POST /api/packs/{id}/activate", handlers.ActivatePack)
	mux.HandleFunc("DELETE /api/packs/{id}", handlers.UninstallPack)
	mux.HandleFunc("GET /api/downloads", handlers.ListDownloads)
	mux.HandleFunc("GET /api/stats", handlers.GetStats)
	mux.HandleFunc("GET /api/events", handlers.StreamEvents)

	server := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// The event stream stays open indefinitely, so only reads get a
		// hard timeout.
		IdleTimeout: 60 * time.Second,
	}

	return &Server{
		server: server,
		logger: slog.Default(),
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
