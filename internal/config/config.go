// Package config provides configuration loading and structs for the kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Chat      ChatConfig      `yaml:"chat"`
	Crawl     CrawlConfig     `yaml:"crawl"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig holds vector store connection settings.
type StoreConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
	VectorSize int    `yaml:"vector_size"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "gemini" or "openai"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// LLMConfig holds generation model settings.
type LLMConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// RerankConfig holds cross-encoder settings.
type RerankConfig struct {
	ModelPath string `yaml:"model_path"`
	MaxTokens int    `yaml:"max_tokens"`
}

// ChatConfig holds serving-path settings.
type ChatConfig struct {
	NResults               int      `yaml:"n_results"`
	TopK                   int      `yaml:"top_k"`
	MaxQueryLength         int      `yaml:"max_query_length"`
	SuppressUnknownSources *bool    `yaml:"suppress_unknown_sources"`
	Suggestions            []string `yaml:"suggestions"`
}

// SuppressUnknownSourcesOrDefault returns the source-suppression policy for
// "I don't know" answers; defaults to true when unset.
func (c *ChatConfig) SuppressUnknownSourcesOrDefault() bool {
	if c.SuppressUnknownSources != nil {
		return *c.SuppressUnknownSources
	}
	return true
}

// CrawlConfig holds ingestion settings. Timing values are plain integers
// because yaml.v3 does not parse duration strings.
type CrawlConfig struct {
	SeedURL           string `yaml:"seed_url"`
	AllowedHost       string `yaml:"allowed_host"`
	PathPrefix        string `yaml:"path_prefix"`
	IDPrefix          string `yaml:"id_prefix"`
	MaxDepth          int    `yaml:"max_depth"`
	BatchSize         int    `yaml:"batch_size"`
	FetchTimeoutSecs  int    `yaml:"fetch_timeout_secs"`
	PolitenessDelayMS int    `yaml:"politeness_delay_ms"`
}

// FetchTimeout returns the per-page fetch timeout as a duration.
func (c *CrawlConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSecs) * time.Second
}

// PolitenessDelay returns the between-fetch delay as a duration.
func (c *CrawlConfig) PolitenessDelay() time.Duration {
	return time.Duration(c.PolitenessDelayMS) * time.Millisecond
}

// FeedbackConfig holds the feedback log location.
type FeedbackConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
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

	configDir := filepath.Dir(path)
	cfg.Rerank.ModelPath = expandPath(cfg.Rerank.ModelPath, configDir)
	cfg.Feedback.DatabasePath = expandPath(cfg.Feedback.DatabasePath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
