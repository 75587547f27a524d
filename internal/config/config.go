package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var exeDirCache string

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	Classifier ClassifierConfig `yaml:"classifier,omitempty"`
	Search     SearchConfig     `yaml:"search,omitempty"`
	Fetch      FetchConfig      `yaml:"fetch,omitempty"`
	DocStore   DocStoreConfig   `yaml:"docstore,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
	History    HistoryConfig    `yaml:"history,omitempty"`
}

// ClassifierConfig selects the LLM backend used for routing decisions.
type ClassifierConfig struct {
	Provider string `yaml:"provider,omitempty"` // "openai" or "anthropic"
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

type SearchConfig struct {
	MaxResults           int    `yaml:"max_results,omitempty"`
	EngineTimeoutSeconds int    `yaml:"engine_timeout_seconds,omitempty"`
	RetryPauseMillis     int    `yaml:"retry_pause_millis,omitempty"`
	TavilyAPIKey         string `yaml:"tavily_api_key,omitempty"`
	GoogleAPIKey         string `yaml:"google_api_key,omitempty"`
	GoogleSearchEngineID string `yaml:"google_search_engine_id,omitempty"`
	BingAPIKey           string `yaml:"bing_api_key,omitempty"`
}

type FetchConfig struct {
	Enabled        bool `yaml:"enabled"`
	MaxChars       int  `yaml:"max_chars,omitempty"`
	TimeoutSeconds int  `yaml:"timeout_seconds,omitempty"`
}

// DocStoreConfig configures the embedded local document store.
type DocStoreConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Dir       string          `yaml:"dir,omitempty"`
	Embedding EmbeddingConfig `yaml:"embedding,omitempty"`
}

type EmbeddingConfig struct {
	Provider string `yaml:"provider,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// CacheConfig configures the SQLite search-result cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path,omitempty"`
	TTLMinutes int    `yaml:"ttl_minutes,omitempty"`
}

type HistoryConfig struct {
	Limit int `yaml:"limit,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Search: SearchConfig{
			MaxResults:           5,
			EngineTimeoutSeconds: 15,
			RetryPauseMillis:     200,
		},
		Fetch: FetchConfig{
			Enabled:        true,
			MaxChars:       3000,
			TimeoutSeconds: 15,
		},
		DocStore: DocStoreConfig{
			Dir: filepath.Join(getExecutableDir(), ".sourcerouter", "docs"),
		},
		Cache: CacheConfig{
			Path:       filepath.Join(getExecutableDir(), ".sourcerouter", "cache.db"),
			TTLMinutes: 60,
		},
		History: HistoryConfig{
			Limit: 1000,
		},
	}
}

func ConfigDir() string {
	return getExecutableDir()
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), ".sourcerouter.yaml")
}

func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv fills missing credentials from the environment so an empty
// config file still picks up keys the usual way.
func (c *Config) applyEnv() {
	if c.Search.TavilyAPIKey == "" {
		c.Search.TavilyAPIKey = os.Getenv("TAVILY_API_KEY")
	}
	if c.Search.GoogleAPIKey == "" {
		c.Search.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.Search.GoogleSearchEngineID == "" {
		c.Search.GoogleSearchEngineID = os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
	}
	if c.Search.BingAPIKey == "" {
		c.Search.BingAPIKey = os.Getenv("BING_SEARCH_KEY")
	}
	if c.Classifier.APIKey == "" {
		switch c.Classifier.Provider {
		case "anthropic":
			c.Classifier.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			c.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if c.DocStore.Embedding.APIKey == "" {
		c.DocStore.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func (c *Config) Save() error {
	if err := os.MkdirAll(ConfigDir(), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath(), data, 0600)
}
