package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
	"github.com/gowri-arun/astraq-kg/pkg/query"
)

func newTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewResultCache(client, time.Minute), mr
}

func sampleRequest(name string) query.Request {
	return query.Request{
		AnchorLabel:  graph.LabelSatellite,
		AnchorAlias:  "s",
		AnchorFilter: &query.Filter{Property: "name", Value: name},
		Projection:   []string{"s.name"},
	}
}

func TestResultCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	req := sampleRequest("INSAT-3DR")
	if _, ok := cache.Get(ctx, req); ok {
		t.Fatal("expected miss on empty cache")
	}

	payload := []byte(`{"rows":[{"s.name":"INSAT-3DR"}]}`)
	cache.Set(ctx, req, payload)

	got, ok := cache.Get(ctx, req)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(got) != string(payload) {
		t.Errorf("cached payload mismatch: %s", got)
	}

	// A different request must not collide.
	if _, ok := cache.Get(ctx, sampleRequest("Oceansat-3")); ok {
		t.Error("different request hit the same cache entry")
	}
}

func TestResultCache_TTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	req := sampleRequest("INSAT-3DR")
	cache.Set(ctx, req, []byte(`{}`))

	mr.FastForward(2 * time.Minute)

	if _, ok := cache.Get(ctx, req); ok {
		t.Error("expected entry to expire after TTL")
	}
}

func TestResultCache_Flush(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, sampleRequest("INSAT-3DR"), []byte(`{}`))
	cache.Set(ctx, sampleRequest("Oceansat-3"), []byte(`{}`))

	if err := cache.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, ok := cache.Get(ctx, sampleRequest("INSAT-3DR")); ok {
		t.Error("expected empty cache after Flush")
	}
}

func TestResultCache_FailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewResultCache(client, time.Minute)

	mr.Close()

	// A dead backend is a miss, never a panic or error surfaced upward.
	if _, ok := cache.Get(context.Background(), sampleRequest("INSAT-3DR")); ok {
		t.Error("expected miss when redis is down")
	}
	cache.Set(context.Background(), sampleRequest("INSAT-3DR"), []byte(`{}`))
}
