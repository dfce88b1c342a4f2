// Package server exposes the schedule resolver over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Options carry the listener settings from config.
type Options struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Pinger is the liveness hook into the persistence collaborator.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server hosts the save and query endpoints.
type Server struct {
	assembler SaveHandler
	queries   QueryHandler
	pinger    Pinger
	server    *http.Server
}

func New(opts Options, assembler SaveHandler, queries QueryHandler, pinger Pinger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		assembler: assembler,
		queries:   queries,
		pinger:    pinger,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", opts.Port),
			Handler:      mux,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
	}

	mux.HandleFunc("/api/v1/schedules", s.handleSave)
	mux.HandleFunc("/api/v1/schedules/query", s.handleQuery)
	mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("Starting HTTP server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
