package classify

import (
	"fmt"

	"github.com/kayz/sourcerouter/internal/config"
)

// NewCompleter builds the configured classifier backend, or nil when no
// API key is present (heuristic-only mode).
func NewCompleter(cfg config.ClassifierConfig) (ChatCompleter, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case "anthropic":
		c, err := NewAnthropicCompleter(cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai", "":
		c, err := NewOpenAICompleter(cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Provider)
	}
}
