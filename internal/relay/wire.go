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

package relay

import (
	"context"
	"fmt"

	"github.com/jredh-dev/relay/config"
	"github.com/jredh-dev/relay/internal/botapi"
	"github.com/jredh-dev/relay/internal/store"
	"github.com/jredh-dev/relay/internal/topic"
)

// FromConfig assembles a Service from cfg: bot API client, thread store,
// and the configured resolver.  Both binaries (server and lambda) share
// this so the wiring cannot drift between them.
//
// The returned func releases store connections during shutdown; it is nil
// when there is nothing to close.
func FromConfig(ctx context.Context, cfg *config.Config) (*Service, func(), error) {
	client := botapi.New(cfg.Bot.APIURL, cfg.Bot.Token, cfg.Bot.ChatID)

	resolver, closer, err := newResolver(ctx, cfg, client)
	if err != nil {
		return nil, nil, err
	}
	return New(client, resolver), closer, nil
}

// newResolver builds the thread resolver named by TOPIC_RESOLVER.  Only the
// remote resolver needs a store; hash mode is purely computational.
func newResolver(ctx context.Context, cfg *config.Config, client *botapi.Client) (topic.Resolver, func(), error) {
	switch cfg.Topic.Resolver {
	case "hash":
		overrides, err := topic.ParseOverrides(cfg.Topic.Overrides)
		if err != nil {
			return nil, nil, fmt.Errorf("TOPIC_OVERRIDES: %w", err)
		}
		return topic.NewHashResolver(overrides), nil, nil

	case "remote":
		st, closer, err := newStore(ctx, cfg.Store)
		if err != nil {
			return nil, nil, err
		}
		return topic.NewRemoteResolver(client, st), closer, nil

	default:
		return nil, nil, fmt.Errorf("unknown TOPIC_RESOLVER %q (want \"remote\" or \"hash\")", cfg.Topic.Resolver)
	}
}

// newStore builds the thread store backend named by THREAD_STORE.
func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemory(), nil, nil

	case "redis":
		st, err := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil

	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil

	case "firestore":
		st, err := store.NewFirestore(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsPath, cfg.FirestoreCollection)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown THREAD_STORE %q (want \"memory\", \"redis\", \"postgres\", or \"firestore\")", cfg.Backend)
	}
}
