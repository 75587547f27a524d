package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kayz/sourcerouter/internal/search"
)

func testStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResults(n int) []search.Result {
	results := make([]search.Result, n)
	for i := range results {
		results[i] = search.Result{
			Title:   "result",
			URL:     "https://example.com",
			Snippet: "snippet",
			Source:  "tavily",
			Kind:    search.KindWeb,
		}
	}
	return results
}

func TestPutGetRoundTrip(t *testing.T) {
	store := testStore(t, time.Hour)
	ctx := context.Background()

	store.Put(ctx, "go generics", 5, sampleResults(2))

	results, ok := store.Get(ctx, "go generics", 5)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Source != "tavily" || results[0].Kind != search.KindWeb {
		t.Fatalf("result fields not preserved: %+v", results[0])
	}
}

func TestGetMissForUnknownQuery(t *testing.T) {
	store := testStore(t, time.Hour)

	if _, ok := store.Get(context.Background(), "never stored", 5); ok {
		t.Fatal("expected a miss for an unknown query")
	}
}

func TestGetHonorsLimit(t *testing.T) {
	store := testStore(t, time.Hour)
	ctx := context.Background()

	store.Put(ctx, "query", 5, sampleResults(5))

	results, ok := store.Get(ctx, "query", 2)
	if !ok {
		t.Fatal("a row stored with a larger limit must satisfy a smaller one")
	}
	if len(results) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(results))
	}

	if _, ok := store.Get(ctx, "query", 10); ok {
		t.Fatal("a row stored with a smaller limit must not satisfy a larger one")
	}
}

func TestExpiredRowsAreMisses(t *testing.T) {
	store := testStore(t, time.Millisecond)
	ctx := context.Background()

	store.Put(ctx, "short lived", 5, sampleResults(1))
	time.Sleep(10 * time.Millisecond)

	if _, ok := store.Get(ctx, "short lived", 5); ok {
		t.Fatal("expected expired row to miss")
	}
}

func TestPutIgnoresEmptyResults(t *testing.T) {
	store := testStore(t, time.Hour)
	ctx := context.Background()

	store.Put(ctx, "empty", 5, nil)
	if _, ok := store.Get(ctx, "empty", 5); ok {
		t.Fatal("empty result sets must not be stored")
	}
}
