package llm

import (
	"fmt"
	"strings"
)

// NewClient creates a client for cfg.Provider, defaulting to Gemini. When
// cfg.RateLimit or cfg.CacheTTL are set the client is wrapped accordingly;
// cached responses do not count against the rate limit.
func NewClient(cfg Config) (Client, error) {
	var (
		client Client
		err    error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini":
		client, err = newGeminiClient(cfg)
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit > 0 {
		client = &limitedClient{next: client, limiter: newRateLimiter(cfg.RateLimit)}
	}
	if cfg.CacheTTL > 0 {
		client = &cachingClient{next: client, cache: newResponseCache(cfg.CacheTTL)}
	}
	return client, nil
}
