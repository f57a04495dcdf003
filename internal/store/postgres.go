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
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ipThreadsSchema bootstraps the one table the store needs.  Safe to run
// multiple times.
const ipThreadsSchema = `
CREATE TABLE IF NOT EXISTS ip_threads (
	ip        TEXT PRIMARY KEY,
	thread_id BIGINT NOT NULL
)`

// Postgres backs the thread cache with a shared database, for deployments
// that already run one and have neither Redis nor Firestore at hand.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a connection pool, fails fast if the database is
// unreachable, and bootstraps the schema.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres store requires DB_URL")
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(pctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := pool.Exec(pctx, ipThreadsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) (int64, bool) {
	var id int64
	err := p.pool.QueryRow(ctx, `SELECT thread_id FROM ip_threads WHERE ip = $1`, key).Scan(&id)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("postgres get %s: %v", key, err)
		}
		return 0, false
	}
	return id, true
}

func (p *Postgres) Set(ctx context.Context, key string, id int64) {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO ip_threads (ip, thread_id) VALUES ($1, $2)
		ON CONFLICT (ip) DO UPDATE SET thread_id = EXCLUDED.thread_id
	`, key, id)
	if err != nil {
		log.Printf("postgres set %s: %v", key, err)
	}
}

// Close shuts down the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
