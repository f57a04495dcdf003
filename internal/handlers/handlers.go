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

// Package handlers implements the relay's HTTP endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jredh-dev/relay/config"
	"github.com/jredh-dev/relay/internal/event"
	"github.com/jredh-dev/relay/internal/metrics"
	"github.com/jredh-dev/relay/internal/relay"
)

// Relayer is the slice of the relay service the handlers need.  Tests
// inject a stub.
type Relayer interface {
	Relay(ctx context.Context, addr string, e *event.Inbound) (*relay.Receipt, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	relayer Relayer
	cfg     *config.Config
}

// New creates a new Handler.
func New(relayer Relayer, cfg *config.Config) *Handler {
	return &Handler{relayer: relayer, cfg: cfg}
}

// Routes registers the relay endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(notFound)

	r.Post("/relay", h.Relay)
	r.Get("/ip", h.IP)
}

// Relay accepts one event and forwards it into the chat.
// POST /relay
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	// Refuse before reading the body: without credentials every delivery
	// would fail against the bot API anyway.
	if !h.cfg.Configured() {
		metrics.CountRequest("config_missing")
		jsonError(w, "relay not configured: BOT_TOKEN and CHAT_ID must be set", http.StatusInternalServerError)
		return
	}

	var e event.Inbound
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		metrics.CountRequest("bad_request")
		if errors.Is(err, io.EOF) {
			jsonError(w, "empty request body", http.StatusBadRequest)
			return
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	addr := clientAddr(r)
	receipt, err := h.relayer.Relay(r.Context(), addr, &e)
	if err != nil {
		metrics.CountRequest("remote_error")
		log.Printf("relay failed for %s: %v", addr, err)
		jsonError(w, "relay failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.CountRequest("ok")
	jsonOK(w, http.StatusOK, receipt)
}

// IP echoes the requester address the relay would tag events with.
// GET /ip
func (h *Handler) IP(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, map[string]string{"ip": clientAddr(r)})
}

// clientAddr resolves the requester address: the first entry of
// X-Forwarded-For, then X-Real-IP, then the socket address.  The service
// runs behind a proxy in production, so the headers usually win.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	metrics.CountRequest("method_not_allowed")
	jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	jsonError(w, "not found", http.StatusNotFound)
}

func jsonOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
