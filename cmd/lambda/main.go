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

// relay-lambda is the API Gateway build of the relay: the same endpoints as
// cmd/server, dispatched from proxy events instead of a listening socket.
// Configuration matches cmd/server (see its package comment); THREAD_STORE
// should stay off "memory" here since every cold start forgets the cache.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jredh-dev/relay/config"
	"github.com/jredh-dev/relay/internal/event"
	"github.com/jredh-dev/relay/internal/metrics"
	"github.com/jredh-dev/relay/internal/relay"
)

// relayer is the slice of the relay service the handler needs.  Tests
// inject a stub.
type relayer interface {
	Relay(ctx context.Context, addr string, e *event.Inbound) (*relay.Receipt, error)
}

type app struct {
	cfg *config.Config
	svc relayer
}

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
}

func (a *app) handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusOK, ""), nil
	}

	switch req.Path {
	case "/relay":
		if req.HTTPMethod != http.MethodPost {
			metrics.CountRequest("method_not_allowed")
			return respondError(http.StatusMethodNotAllowed, "method not allowed"), nil
		}
		return a.relay(ctx, req), nil

	case "/ip":
		if req.HTTPMethod != http.MethodGet {
			metrics.CountRequest("method_not_allowed")
			return respondError(http.StatusMethodNotAllowed, "method not allowed"), nil
		}
		return respondJSON(http.StatusOK, map[string]string{"ip": clientAddr(req)}), nil

	default:
		return respondError(http.StatusNotFound, "not found"), nil
	}
}

func (a *app) relay(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if !a.cfg.Configured() {
		metrics.CountRequest("config_missing")
		return respondError(http.StatusInternalServerError, "relay not configured: BOT_TOKEN and CHAT_ID must be set")
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			metrics.CountRequest("bad_request")
			return respondError(http.StatusBadRequest, "invalid request body: "+err.Error())
		}
		body = decoded
	}
	if len(body) == 0 {
		metrics.CountRequest("bad_request")
		return respondError(http.StatusBadRequest, "empty request body")
	}

	var e event.Inbound
	if err := json.Unmarshal(body, &e); err != nil {
		metrics.CountRequest("bad_request")
		return respondError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	addr := clientAddr(req)
	receipt, err := a.svc.Relay(ctx, addr, &e)
	if err != nil {
		metrics.CountRequest("remote_error")
		log.Printf("relay failed for %s: %v", addr, err)
		return respondError(http.StatusInternalServerError, "relay failed: "+err.Error())
	}

	metrics.CountRequest("ok")
	return respondJSON(http.StatusOK, receipt)
}

// header does a case-insensitive lookup; API Gateway does not canonicalize
// header casing.
func header(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// clientAddr resolves the requester address the same way the server build
// does, with the API Gateway source IP standing in for the socket address.
func clientAddr(req events.APIGatewayProxyRequest) string {
	if fwd := header(req, "X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if real := header(req, "X-Real-IP"); real != "" {
		return real
	}
	if ip := req.RequestContext.Identity.SourceIP; ip != "" {
		return ip
	}
	return "unknown"
}

func respond(status int, body string) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(corsHeaders)+1)
	for k, v := range corsHeaders {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}

func respondJSON(status int, data interface{}) events.APIGatewayProxyResponse {
	b, _ := json.Marshal(data)
	resp := respond(status, string(b))
	resp.Headers["Content-Type"] = "application/json"
	return resp
}

func respondError(status int, msg string) events.APIGatewayProxyResponse {
	return respondJSON(status, map[string]string{"error": msg})
}

func main() {
	cfg := config.Load()

	// The store closer is dropped: Lambda freezes the process between
	// invocations rather than shutting it down.
	svc, _, err := relay.FromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to assemble relay: %v", err)
	}

	a := &app{cfg: cfg, svc: svc}
	lambda.Start(a.handle)
}
