// relay - website event relay for Telegram forum threads
// Copyright (C) 2026  jredh-dev contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// Package httpserver provides the relay's HTTP scaffold.
//
// It sets up a chi router with standard middleware (request ID, real IP,
// logging, recovery, timeout, CORS), /health and /metrics endpoints, and
// graceful shutdown. The relay handlers register their routes on Router.
package httpserver

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is an HTTP server with standard middleware and graceful shutdown.
type Server struct {
	Router *chi.Mux
	srv    *http.Server
	onStop []func()
}

// New creates a Server with standard middleware already applied.
// The returned Router is ready for route registration.
func New() *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck
	})
	r.Handle("/metrics", promhttp.Handler())

	return &Server{Router: r}
}

// OnStop registers a function to call during graceful shutdown.
func (s *Server) OnStop(fn func()) {
	s.onStop = append(s.onStop, fn)
}

// ListenAndServe starts the server on addr and blocks until shutdown.
// It handles SIGINT/SIGTERM for graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down server...")
		for _, fn := range s.onStop {
			fn()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("relay starting on %s", addr)
	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	log.Println("Server stopped")
	return nil
}

// cors applies the relay's permissive cross-origin policy: the endpoints are
// meant to be called from arbitrary websites, so any origin may POST.
// Preflight OPTIONS requests are answered here with 200 and no body.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
