package api

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestDeduper(t *testing.T, ttl time.Duration) (*RedisDeduper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDeduper(client, ttl), mr
}

func TestDeduperAdd(t *testing.T) {
	deduper, _ := newTestDeduper(t, time.Minute)
	ctx := context.Background()

	added, err := deduper.Add(ctx, "jane@x.com", "key-1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("first add should succeed")
	}

	added, err = deduper.Add(ctx, "jane@x.com", "key-1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added {
		t.Fatal("replayed key should be rejected")
	}

	// Keys are scoped per user.
	added, err = deduper.Add(ctx, "john@x.com", "key-1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("same key for another user should succeed")
	}
}

func TestDeduperRemove(t *testing.T) {
	deduper, _ := newTestDeduper(t, time.Minute)
	ctx := context.Background()

	if _, err := deduper.Add(ctx, "jane@x.com", "key-1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := deduper.Remove(ctx, "jane@x.com", "key-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	added, err := deduper.Add(ctx, "jane@x.com", "key-1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("removed key should be addable again")
	}
}

func TestDeduperKeyExpiry(t *testing.T) {
	deduper, mr := newTestDeduper(t, time.Second)
	ctx := context.Background()

	if _, err := deduper.Add(ctx, "jane@x.com", "key-1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	mr.FastForward(2 * time.Second)

	added, err := deduper.Add(ctx, "jane@x.com", "key-1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("expired key should be addable again")
	}
}
