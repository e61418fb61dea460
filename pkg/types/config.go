// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CacheConfig holds settings for the polite response cache.
type CacheConfig struct {
	// Enabled turns the SQLite GET cache on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the cache database file (default "cache/scholar.db").
	Path string `json:"path" yaml:"path"`

	// TTL is how long a cached response stays fresh (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// EngineConfig holds settings for the retrieval engine.
type EngineConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL overrides the OpenAlex API root. Empty means the public API;
	// set only in tests.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Mailto is the identifying contact address sent on every upstream
	// request for OpenAlex polite-pool access. Required; the engine refuses
	// to start without it.
	Mailto string `json:"mailto" yaml:"mailto"`

	// RequestInterval is the minimum spacing between outbound requests,
	// shared across all concurrent callers (default 100ms).
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval"`

	// MaxAttempts caps tries per request including the first (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// MaxWalkResults caps citation-graph walks when the caller does not
	// specify a limit (default 200).
	MaxWalkResults int `json:"max_walk_results" yaml:"max_walk_results"`

	// Cache configures the polite response cache.
	Cache CacheConfig `json:"cache" yaml:"cache"`
}
