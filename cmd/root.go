package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/sourcerouter/internal/cache"
	"github.com/kayz/sourcerouter/internal/classify"
	"github.com/kayz/sourcerouter/internal/config"
	"github.com/kayz/sourcerouter/internal/docstore"
	"github.com/kayz/sourcerouter/internal/fetch"
	"github.com/kayz/sourcerouter/internal/logger"
	"github.com/kayz/sourcerouter/internal/router"
	"github.com/kayz/sourcerouter/internal/search"
)

var (
	logLevel     string
	tavilyAPIKey string
	googleAPIKey string
	googleCX     string
	bingAPIKey   string
	noFetch      bool
	noCache      bool
)

var rootCmd = &cobra.Command{
	Use:   "sourcerouter",
	Short: "Query router over local documents and a web search fallback chain",
	Long: `sourcerouter decides, per query, whether local documents, web search
or both should answer it, then runs the chosen retrieval path.

The web path tries providers in order (tavily, wikipedia, arxiv, google,
bing) and falls back to a synthetic result set, so a search never comes
back empty.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&tavilyAPIKey, "tavily-api-key", "",
		"Tavily search API key")
	rootCmd.PersistentFlags().StringVar(&googleAPIKey, "google-api-key", "",
		"Google Custom Search API key")
	rootCmd.PersistentFlags().StringVar(&googleCX, "google-cx", "",
		"Google Custom Search engine id")
	rootCmd.PersistentFlags().StringVar(&bingAPIKey, "bing-api-key", "",
		"Bing Web Search API key")
	rootCmd.PersistentFlags().BoolVar(&noFetch, "no-fetch", false,
		"Disable full page content fetching for web results")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false,
		"Disable the search result cache")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() *Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	if tavilyAPIKey != "" {
		cfg.Search.TavilyAPIKey = tavilyAPIKey
	}
	if googleAPIKey != "" {
		cfg.Search.GoogleAPIKey = googleAPIKey
	}
	if googleCX != "" {
		cfg.Search.GoogleSearchEngineID = googleCX
	}
	if bingAPIKey != "" {
		cfg.Search.BingAPIKey = bingAPIKey
	}
	if noFetch {
		cfg.Fetch.Enabled = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	return cfg
}

// Config aliases the config type so subcommands don't re-import it.
type Config = config.Config

type app struct {
	router *router.Router
	docs   *docstore.Store
	chain  *search.Chain
	cache  *cache.Store
}

// buildApp wires the full stack from configuration. Missing optional
// pieces (classifier key, cache, docstore) degrade instead of failing.
func buildApp(cfg *Config) *app {
	var resultCache search.ResultCache
	var cacheStore *cache.Store
	if cfg.Cache.Enabled {
		store, err := cache.NewStore(cfg.Cache.Path, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
		if err != nil {
			logger.Warn("search cache unavailable: %v", err)
		} else {
			resultCache = store
			cacheStore = store
		}
	}

	chain := search.NewChain(cfg.Search, resultCache)

	var fetcher *fetch.Fetcher
	if cfg.Fetch.Enabled {
		fetcher = fetch.NewFetcher(cfg.Fetch)
	}

	completer, err := classify.NewCompleter(cfg.Classifier)
	if err != nil {
		logger.Warn("classifier backend unavailable, falling back to heuristics: %v", err)
	}

	docs, err := docstore.NewStore(cfg.DocStore)
	if err != nil {
		logger.Warn("document store unavailable: %v", err)
	}

	dispatcher := router.NewDispatcher(chain, fetcher, cfg.Search.MaxResults)

	return &app{
		router: router.New(classify.NewClassifier(completer), dispatcher, cfg.History.Limit),
		docs:   docs,
		chain:  chain,
		cache:  cacheStore,
	}
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// retriever returns the docstore as a LocalRetriever, avoiding a typed
// nil interface when the store is absent.
func (a *app) retriever() router.LocalRetriever {
	if a.docs == nil {
		return nil
	}
	return a.docs
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
