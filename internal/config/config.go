// Package config provides configuration loading and structs for the search service.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool          `yaml:"debug"`
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	Search   SearchConfig  `yaml:"search"`
	Synonyms SynonymConfig `yaml:"synonyms"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects and configures the backing store.
// Driver is "postgres" (production, pg_trgm) or "sqlite" (development).
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SearchConfig holds every tunable of the fuzzy search subsystem.
// Timeouts are in milliseconds.
type SearchConfig struct {
	MaxQueryLength        int     `yaml:"max_query_length"`
	MaxTokens             int     `yaml:"max_tokens"`
	MinFuzzyQueryLength   int     `yaml:"min_fuzzy_query_length"`
	MinQuickSearchLength  int     `yaml:"min_quick_search_length"`
	MinSuggestTokenLength int     `yaml:"min_suggest_token_length"`
	SimilarityThreshold   float64 `yaml:"similarity_threshold"`
	SuggestionThreshold   float64 `yaml:"suggestion_threshold"`
	MatchTimeoutMS        int     `yaml:"match_timeout_ms"`
	SuggestionTimeoutMS   int     `yaml:"suggestion_timeout_ms"`
	MatchLimit            int     `yaml:"match_limit"`
	QuickSearchLimit      int     `yaml:"quick_search_limit"`
	SuggestionMinResults  int     `yaml:"suggestion_min_results"`
}

// MatchTimeout returns the statement budget for one fuzzy match session.
func (c *SearchConfig) MatchTimeout() time.Duration {
	return time.Duration(c.MatchTimeoutMS) * time.Millisecond
}

// SuggestionTimeout returns the (shorter) statement budget for one
// vocabulary lookup session.
func (c *SearchConfig) SuggestionTimeout() time.Duration {
	return time.Duration(c.SuggestionTimeoutMS) * time.Millisecond
}

// SynonymConfig holds the synonym groups and the per-language exclusion
// list (terms that collide with function words of the catalog language).
type SynonymConfig struct {
	Groups     [][]string `yaml:"groups"`
	Exclusions []string   `yaml:"exclusions"`
}

// Load reads and parses the config file at path and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}
