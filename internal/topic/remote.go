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
	"errors"
	"log"
	"strings"

	"github.com/jredh-dev/relay/internal/botapi"
	"github.com/jredh-dev/relay/internal/store"
)

// pageSize is how many topics one directory page holds. A page shorter than
// this is the last one.
const pageSize = 100

// topicName is the naming convention tying a thread to its caller address.
func topicName(addr string) string {
	return "IP: " + addr
}

// Directory is the slice of the chat API the remote resolver needs. Tests
// inject a fake; production passes the botapi client.
type Directory interface {
	ListTopics(ctx context.Context, page, pageSize int) ([]botapi.Topic, error)
	CreateTopic(ctx context.Context, name string) (*botapi.Topic, error)
}

// RemoteResolver finds or creates one thread per caller address in the
// destination chat and caches resolved ids in an injected store.
type RemoteResolver struct {
	dir   Directory
	store store.Store
}

// NewRemoteResolver creates a resolver backed by dir and st.
func NewRemoteResolver(dir Directory, st store.Store) *RemoteResolver {
	return &RemoteResolver{dir: dir, store: st}
}

// Resolve returns the thread id for addr, creating the thread on first
// sighting. Every failure path degrades to the default channel — a missing
// thread never fails the relay itself.
func (r *RemoteResolver) Resolve(ctx context.Context, addr string) int64 {
	if id, ok := r.store.Get(ctx, addr); ok {
		return id
	}

	name := topicName(addr)
	if id, ok := r.find(ctx, name); ok {
		r.store.Set(ctx, addr, id)
		return id
	}

	created, err := r.dir.CreateTopic(ctx, name)
	if err == nil {
		r.store.Set(ctx, addr, created.ThreadID)
		return created.ThreadID
	}

	// Another instance can win the create race: each instance carries its
	// own cache unless the store is shared. Re-find once before giving up.
	var apiErr *botapi.APIError
	if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Description), "already exist") {
		if id, ok := r.find(ctx, name); ok {
			r.store.Set(ctx, addr, id)
			return id
		}
	}

	log.Printf("no thread for %s, falling back to default channel: %v", addr, err)
	return 0
}

// find pages through the chat's topic directory looking for name. Paging
// stops at the first short page or listing error.
func (r *RemoteResolver) find(ctx context.Context, name string) (int64, bool) {
	for page := 1; ; page++ {
		topics, err := r.dir.ListTopics(ctx, page, pageSize)
		if err != nil {
			log.Printf("list topics page %d: %v", page, err)
			return 0, false
		}
		for _, t := range topics {
			if t.Name == name {
				return t.ThreadID, true
			}
		}
		if len(topics) < pageSize {
			return 0, false
		}
	}
}
