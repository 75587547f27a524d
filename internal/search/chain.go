package search

import (
	"context"
	"time"

	"github.com/kayz/sourcerouter/internal/config"
	"github.com/kayz/sourcerouter/internal/logger"
)

// ResultCache is an optional store consulted before the chain touches
// any network backend. Implemented by internal/cache.
type ResultCache interface {
	Get(ctx context.Context, query string, limit int) ([]Result, bool)
	Put(ctx context.Context, query string, limit int, results []Result)
}

// Chain tries engines in priority order until one returns at least one
// result. The last engine always succeeds, so Search is guaranteed to
// return a non-empty slice and never an error.
type Chain struct {
	engines []Engine
	timeout time.Duration
	pause   time.Duration
	cache   ResultCache
}

// NewChain builds the standard fallback chain:
// tavily → wikipedia → arxiv → google → bing → local-cache.
func NewChain(cfg config.SearchConfig, cache ResultCache) *Chain {
	timeout := time.Duration(cfg.EngineTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	pause := time.Duration(cfg.RetryPauseMillis) * time.Millisecond
	if pause <= 0 {
		pause = 200 * time.Millisecond
	}

	return &Chain{
		engines: []Engine{
			NewTavilyEngine(cfg.TavilyAPIKey, timeout),
			NewWikipediaEngine(timeout),
			NewArxivEngine(timeout),
			NewGoogleEngine(cfg.GoogleAPIKey, cfg.GoogleSearchEngineID, timeout),
			NewBingEngine(cfg.BingAPIKey, timeout),
			NewFallbackEngine(),
		},
		timeout: timeout,
		pause:   pause,
		cache:   cache,
	}
}

// NewChainWithEngines builds a chain over an explicit engine list.
// The caller is responsible for ending the list with an engine that
// cannot decline.
func NewChainWithEngines(engines []Engine, timeout, pause time.Duration, cache ResultCache) *Chain {
	return &Chain{
		engines: engines,
		timeout: timeout,
		pause:   pause,
		cache:   cache,
	}
}

// Engines returns the names of configured engines in priority order,
// paired with their availability.
func (c *Chain) Engines() []EngineStatus {
	statuses := make([]EngineStatus, 0, len(c.engines))
	for _, e := range c.engines {
		statuses = append(statuses, EngineStatus{Name: e.Name(), Available: e.Available()})
	}
	return statuses
}

type EngineStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Search walks the chain and returns the first non-empty result set.
// An engine error, an empty result list or a per-engine timeout all
// count as declined and advance the chain.
func (c *Chain) Search(ctx context.Context, query string, limit int) []Result {
	if limit <= 0 {
		limit = 5
	}

	if c.cache != nil {
		if results, ok := c.cache.Get(ctx, query, limit); ok && len(results) > 0 {
			logger.Debug("search cache hit for %q", query)
			return results
		}
	}

	for i, engine := range c.engines {
		if !engine.Available() {
			logger.Debug("engine %s unavailable, skipping", engine.Name())
			continue
		}

		results, err := c.searchOne(ctx, engine, query, limit)
		switch {
		case err != nil:
			logger.Warn("engine %s declined: %v", engine.Name(), err)
		case len(results) == 0:
			logger.Warn("engine %s returned no results", engine.Name())
		default:
			logger.Info("engine %s answered with %d results", engine.Name(), len(results))
			if c.cache != nil && engine.Name() != fallbackEngineName {
				c.cache.Put(ctx, query, limit, results)
			}
			return results
		}

		// Brief pause before the next backend to avoid hammering.
		if i < len(c.engines)-1 {
			select {
			case <-time.After(c.pause):
			case <-ctx.Done():
			}
		}
	}

	// Unreachable as long as the fallback engine terminates the list,
	// but the non-empty guarantee must not depend on that.
	results, _ := NewFallbackEngine().Search(ctx, query, limit)
	return results
}

func (c *Chain) searchOne(ctx context.Context, engine Engine, query string, limit int) ([]Result, error) {
	engineCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return engine.Search(engineCtx, query, limit)
}
