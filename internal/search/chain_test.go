package search

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubEngine struct {
	name      string
	available bool
	results   []Result
	err       error
	calls     int
}

func (s *stubEngine) Name() string    { return s.name }
func (s *stubEngine) Available() bool { return s.available }

func (s *stubEngine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type memoryCache struct {
	entries map[string][]Result
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]Result{}}
}

func (m *memoryCache) Get(ctx context.Context, query string, limit int) ([]Result, bool) {
	r, ok := m.entries[query]
	return r, ok
}

func (m *memoryCache) Put(ctx context.Context, query string, limit int, results []Result) {
	m.puts++
	m.entries[query] = results
}

func testChain(cache ResultCache, engines ...Engine) *Chain {
	return NewChainWithEngines(engines, time.Second, time.Millisecond, cache)
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := &stubEngine{name: "first", available: true, results: []Result{{Title: "a", Source: "first"}}}
	second := &stubEngine{name: "second", available: true, results: []Result{{Title: "b", Source: "second"}}}
	chain := testChain(nil, first, second, NewFallbackEngine())

	results := chain.Search(context.Background(), "anything", 5)
	if len(results) != 1 || results[0].Source != "first" {
		t.Fatalf("expected first engine's result, got %+v", results)
	}
	if second.calls != 0 {
		t.Fatalf("second engine should not have been called, got %d calls", second.calls)
	}
}

func TestChainAdvancesPastErrorsAndEmptyResults(t *testing.T) {
	failing := &stubEngine{name: "failing", available: true, err: errors.New("boom")}
	empty := &stubEngine{name: "empty", available: true}
	working := &stubEngine{name: "working", available: true, results: []Result{{Title: "hit", Source: "working"}}}
	chain := testChain(nil, failing, empty, working, NewFallbackEngine())

	results := chain.Search(context.Background(), "query", 5)
	if len(results) != 1 || results[0].Source != "working" {
		t.Fatalf("expected working engine's result, got %+v", results)
	}
	if failing.calls != 1 || empty.calls != 1 {
		t.Fatalf("expected earlier engines tried once, got %d/%d", failing.calls, empty.calls)
	}
}

func TestChainSkipsUnavailableEnginesWithoutCalling(t *testing.T) {
	unavailable := &stubEngine{name: "no-key", available: false, results: []Result{{Title: "x"}}}
	working := &stubEngine{name: "working", available: true, results: []Result{{Title: "hit", Source: "working"}}}
	chain := testChain(nil, unavailable, working, NewFallbackEngine())

	results := chain.Search(context.Background(), "query", 5)
	if results[0].Source != "working" {
		t.Fatalf("expected working engine's result, got %+v", results)
	}
	if unavailable.calls != 0 {
		t.Fatalf("unavailable engine must not be called, got %d calls", unavailable.calls)
	}
}

func TestChainNeverReturnsEmpty(t *testing.T) {
	failing := &stubEngine{name: "failing", available: true, err: errors.New("down")}
	empty := &stubEngine{name: "empty", available: true}
	chain := testChain(nil, failing, empty, NewFallbackEngine())

	results := chain.Search(context.Background(), "obscure query", 5)
	if len(results) == 0 {
		t.Fatal("chain must never return an empty result set")
	}
	for _, r := range results {
		if r.Source != fallbackEngineName {
			t.Fatalf("expected fallback results tagged %q, got %q", fallbackEngineName, r.Source)
		}
	}
}

func TestChainNonEmptyWithoutTerminalFallback(t *testing.T) {
	failing := &stubEngine{name: "failing", available: true, err: errors.New("down")}
	chain := testChain(nil, failing)

	results := chain.Search(context.Background(), "query", 5)
	if len(results) == 0 {
		t.Fatal("chain must synthesize results even without a terminal engine")
	}
}

func TestChainCacheHitShortCircuits(t *testing.T) {
	cache := newMemoryCache()
	cache.entries["cached query"] = []Result{{Title: "cached", Source: "tavily"}}
	engine := &stubEngine{name: "engine", available: true, results: []Result{{Title: "fresh"}}}
	chain := testChain(cache, engine, NewFallbackEngine())

	results := chain.Search(context.Background(), "cached query", 5)
	if len(results) != 1 || results[0].Title != "cached" {
		t.Fatalf("expected cached result, got %+v", results)
	}
	if engine.calls != 0 {
		t.Fatalf("cache hit must not reach engines, got %d calls", engine.calls)
	}
}

func TestChainCachesRealResultsButNotFallback(t *testing.T) {
	cache := newMemoryCache()
	engine := &stubEngine{name: "engine", available: true, results: []Result{{Title: "hit", Source: "engine"}}}
	chain := testChain(cache, engine, NewFallbackEngine())

	chain.Search(context.Background(), "real", 5)
	if cache.puts != 1 {
		t.Fatalf("expected 1 cache put for a real engine, got %d", cache.puts)
	}

	declining := &stubEngine{name: "declining", available: true}
	chain = testChain(cache, declining, NewFallbackEngine())
	chain.Search(context.Background(), "synthetic", 5)
	if cache.puts != 1 {
		t.Fatalf("fallback results must not be cached, got %d puts", cache.puts)
	}
}

func TestChainDefaultsLimit(t *testing.T) {
	engine := &stubEngine{name: "engine", available: true, results: []Result{{Title: "hit"}}}
	chain := testChain(nil, engine, NewFallbackEngine())

	results := chain.Search(context.Background(), "query", 0)
	if len(results) == 0 {
		t.Fatal("expected results with a zero limit")
	}
}

func TestFallbackEngineDeterministic(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := &FallbackEngine{now: func() time.Time { return fixed }}

	results, err := e.Search(context.Background(), "go routing", 5)
	if err != nil {
		t.Fatalf("fallback engine must not fail: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 synthetic results, got %d", len(results))
	}
	if results[0].URL != "https://local.search/results?q=go+routing" {
		t.Fatalf("unexpected URL: %s", results[0].URL)
	}
	if results[1].Title != "Related: Go Routing Overview" {
		t.Fatalf("unexpected title: %s", results[1].Title)
	}

	limited, _ := e.Search(context.Background(), "go routing", 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestEngineAvailabilityFollowsCredentials(t *testing.T) {
	if NewTavilyEngine("", time.Second).Available() {
		t.Fatal("tavily without a key must be unavailable")
	}
	if !NewTavilyEngine("tvly-key", time.Second).Available() {
		t.Fatal("tavily with a key must be available")
	}
	if NewGoogleEngine("key", "", time.Second).Available() {
		t.Fatal("google without an engine ID must be unavailable")
	}
	if !NewGoogleEngine("key", "cx", time.Second).Available() {
		t.Fatal("google with key and engine ID must be available")
	}
	if NewBingEngine("", time.Second).Available() {
		t.Fatal("bing without a key must be unavailable")
	}
	if !NewWikipediaEngine(time.Second).Available() {
		t.Fatal("wikipedia needs no credential")
	}
	if !NewArxivEngine(time.Second).Available() {
		t.Fatal("arxiv needs no credential")
	}
}
