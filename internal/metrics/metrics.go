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

// Package metrics exposes Prometheus collectors for the relay. Collectors
// register into the default registry so promhttp can serve them without any
// wiring in callers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "relay", Name: "requests_total", Help: "Inbound relay requests by outcome."},
		[]string{"outcome"},
	)
	botCallSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "relay", Name: "bot_call_seconds", Help: "Outbound bot API round-trip duration by method."},
		[]string{"method"},
	)
)

func init() {
	_ = prometheus.Register(requestsTotal)
	_ = prometheus.Register(botCallSeconds)
}

// CountRequest records one inbound request by outcome: ok, bad_request,
// method_not_allowed, config_missing, or remote_error.
func CountRequest(outcome string) {
	requestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveBotCall records the duration of one outbound bot API call.
func ObserveBotCall(method string, d time.Duration) {
	botCallSeconds.WithLabelValues(method).Observe(d.Seconds())
}
