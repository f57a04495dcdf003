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

package store

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces thread entries so the relay can share a Redis
// instance with other services.
const keyPrefix = "thread:"

// Redis backs the thread cache with a shared Redis instance so every
// serverless instance resolves each address at most once. Entries never
// expire: a topic, once created, stays valid for the life of the chat.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to addr and verifies the connection with a ping.
func NewRedis(addr, password string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (int64, bool) {
	val, err := r.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		log.Printf("redis get %s: %v", key, err)
		return 0, false
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		log.Printf("redis entry for %s is not a thread id: %q", key, val)
		return 0, false
	}
	return id, true
}

func (r *Redis) Set(ctx context.Context, key string, id int64) {
	if err := r.client.Set(ctx, keyPrefix+key, strconv.FormatInt(id, 10), 0).Err(); err != nil {
		log.Printf("redis set %s: %v", key, err)
	}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
