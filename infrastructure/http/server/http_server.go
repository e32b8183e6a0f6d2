// Package server exposes the chat room over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// NewRouter maps the HTTP surface onto the chat server handlers.
func NewRouter(log *slog.Logger, s *ChatServer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /participants", s.Join)
	mux.HandleFunc("GET /participants", s.ListParticipants)
	mux.HandleFunc("DELETE /participants", s.Leave)
	mux.HandleFunc("POST /messages", s.PostMessage)
	mux.HandleFunc("GET /messages", s.GetMessages)
	mux.HandleFunc("DELETE /messages/{id}", s.DeleteMessage)
	mux.HandleFunc("PUT /messages/{id}", s.EditMessage)
	mux.HandleFunc("POST /status", s.Heartbeat)
	mux.HandleFunc("GET /healthz", Health)
	return withRequestLog(log, mux)
}

// CreateServer returns an HTTP server with production timeouts.
func CreateServer(address string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ShutdownServer stops accepting requests and waits for in-flight ones until timeout.
func ShutdownServer(log *slog.Logger, server *http.Server, timeout time.Duration) error {
	log.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
		return err
	}
	log.Info("HTTP server shutdown completed")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLog(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"user", r.Header.Get(UserHeader),
			"status", rec.status,
			"duration", time.Since(start))
	})
}
