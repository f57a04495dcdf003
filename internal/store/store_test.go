package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if id, ok := m.Get(ctx, "1.2.3.4"); ok {
		t.Errorf("expected miss on empty store, got %d", id)
	}

	m.Set(ctx, "1.2.3.4", 101)
	id, ok := m.Get(ctx, "1.2.3.4")
	if !ok || id != 101 {
		t.Errorf("expected (101, true), got (%d, %v)", id, ok)
	}

	// Entries are overwritten, not duplicated.
	m.Set(ctx, "1.2.3.4", 202)
	if id, _ := m.Get(ctx, "1.2.3.4"); id != 202 {
		t.Errorf("expected overwrite to 202, got %d", id)
	}

	if _, ok := m.Get(ctx, "5.6.7.8"); ok {
		t.Error("expected miss for unseen address")
	}
}

func TestRedis_BackendErrorDegradesToMiss(t *testing.T) {
	// Point the client at a port nothing listens on: every call fails, and
	// the store must report misses instead of surfacing errors.
	r := &Redis{client: redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
	})}
	defer r.Close()

	ctx := context.Background()
	if id, ok := r.Get(ctx, "1.2.3.4"); ok {
		t.Errorf("expected miss from unreachable backend, got %d", id)
	}

	// Set must not panic or block beyond the client timeout.
	r.Set(ctx, "1.2.3.4", 101)
}

func TestPostgres_RequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty DSN")
	}
	if !strings.Contains(err.Error(), "DB_URL") {
		t.Errorf("error should name the missing variable: %v", err)
	}
}

func TestPostgres_BackendErrorDegradesToMiss(t *testing.T) {
	// The pool is built without dialing, so pointing it at a dead port
	// exercises the same degradation path as the Redis test.
	pool, err := pgxpool.New(context.Background(), "postgres://relay@127.0.0.1:1/relay?connect_timeout=1")
	if err != nil {
		t.Fatalf("build pool: %v", err)
	}
	p := &Postgres{pool: pool}
	defer p.Close()

	ctx := context.Background()
	if id, ok := p.Get(ctx, "1.2.3.4"); ok {
		t.Errorf("expected miss from unreachable backend, got %d", id)
	}
	p.Set(ctx, "1.2.3.4", 101)
}
