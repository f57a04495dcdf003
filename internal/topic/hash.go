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

package topic

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Derived ids land in [100000, 999999].
const (
	threadIDSpan  = 900000
	threadIDFloor = 100000
)

// HashResolver derives a thread id from the address alone: a 32-bit rolling
// hash bucketed into a fixed six-digit range, with a static override table
// taking precedence. Same address, same id, across calls and processes.
//
// Known gap: the resolver never registers its ids with the chat API, so a
// send fails unless a thread with the derived id actually exists. Overrides
// are how known callers get pinned to real threads.
type HashResolver struct {
	overrides map[string]int64
}

// NewHashResolver creates a resolver with the given override table, which
// may be nil.
func NewHashResolver(overrides map[string]int64) *HashResolver {
	if overrides == nil {
		overrides = map[string]int64{}
	}
	return &HashResolver{overrides: overrides}
}

// Resolve returns the override for addr when one is configured, otherwise
// the hash-derived id.
func (r *HashResolver) Resolve(_ context.Context, addr string) int64 {
	if id, ok := r.overrides[addr]; ok {
		return id
	}

	var h int32
	for _, b := range []byte(addr) {
		h = h*31 + int32(b)
	}
	n := int64(h)
	if n < 0 {
		n = -n
	}
	return n%threadIDSpan + threadIDFloor
}

// ParseOverrides parses the override table from its environment form,
// comma-separated "ip:threadId" pairs. Pairs split on the last colon so
// IPv6 addresses pass through intact.
func ParseOverrides(raw string) (map[string]int64, error) {
	overrides := map[string]int64{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return overrides, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		sep := strings.LastIndex(pair, ":")
		if sep <= 0 || sep == len(pair)-1 {
			return nil, fmt.Errorf(`override %q: want "ip:threadId"`, pair)
		}
		addr := strings.TrimSpace(pair[:sep])
		id, err := strconv.ParseInt(strings.TrimSpace(pair[sep+1:]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("override %q: thread id is not a number", pair)
		}
		overrides[addr] = id
	}
	return overrides, nil
}
