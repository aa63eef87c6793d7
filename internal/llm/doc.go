// Package llm provides text-generation clients for Gemini, OpenAI and
// Anthropic behind a single Client interface, with optional response caching
// and rate limiting.
package llm
