// README: Catalog store integration test (requires a reachable Redis).
package location

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestListServedFromWarmCache(t *testing.T) {
	addr := os.Getenv("CONCIERGE_REDIS_ADDR")
	if addr == "" {
		t.Skip("CONCIERGE_REDIS_ADDR not set; skipping integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seeded := []Place{
		{ID: "loc-1", Name: "Sảnh chính", Aliases: []string{"Lobby"}, Area: "hotel"},
		{ID: "loc-2", Name: "Hồ Bơi", Area: "hotel"},
	}
	raw, err := json.Marshal(seeded)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Set(ctx, catalogCacheKey, raw, time.Minute).Err(); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}
	defer client.Del(ctx, catalogCacheKey)

	// A warm cache must satisfy List without touching Postgres.
	store := NewStore(nil, client)
	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != len(seeded) {
		t.Fatalf("got %d places, want %d", len(got), len(seeded))
	}
	if got[0].Name != "Sảnh chính" || got[1].Name != "Hồ Bơi" {
		t.Errorf("unexpected catalog order: %+v", got)
	}
}
