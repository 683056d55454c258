// Package config provides configuration loading for renovad.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (RENOVAD_SERVER_HTTP_PORT, RENOVAD_GENERATION_MODEL, ...)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"fmt"
	"time"
)

// Config holds the complete renovad configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Generation GenerationConfig `koanf:"generation"`
	Retrieval  RetrievalConfig  `koanf:"retrieval"`
	Memory     MemoryConfig     `koanf:"memory"`
	Decision   DecisionConfig   `koanf:"decision"`
	Research   ResearchConfig   `koanf:"research"`
	Tools      ToolsConfig      `koanf:"tools"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// GenerationConfig holds the generation collaborator configuration.
type GenerationConfig struct {
	// Provider selects the backend: "openai" or any OpenAI-compatible endpoint.
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	APIKey   Secret `koanf:"api_key"`
	Timeout  Duration `koanf:"timeout"`
	// RateLimit is requests per second allowed to the provider.
	RateLimit  float64 `koanf:"rate_limit"`
	MaxRetries int     `koanf:"max_retries"`
}

// RetrievalConfig holds knowledge-base retrieval configuration.
type RetrievalConfig struct {
	Enabled bool `koanf:"enabled"`
	// Path is where the embedded vector store persists its data.
	Path       string `koanf:"path"`
	Collection string `koanf:"collection"`
	TopK       int    `koanf:"top_k"`
}

// MemoryConfig holds working-memory and history configuration.
type MemoryConfig struct {
	Enabled bool `koanf:"enabled"`
	// WorkingStore selects the backend: "memory" (default) or "nats".
	WorkingStore string `koanf:"working_store"`
	NATSURL      string `koanf:"nats_url"`
	NATSBucket   string `koanf:"nats_bucket"`
	// ShortTermLimit bounds per-session history turns kept in memory.
	ShortTermLimit int `koanf:"short_term_limit"`
}

// DecisionConfig holds decision-graph engine configuration.
type DecisionConfig struct {
	// GraphsPath optionally overrides the embedded graph catalogue.
	GraphsPath string `koanf:"graphs_path"`
	// OverwriteOnRematch controls whether a later turn may overwrite an
	// already-recorded answer. Supports user correction; on by default.
	OverwriteOnRematch bool `koanf:"overwrite_on_rematch"`
}

// ResearchConfig holds deep-research pipeline configuration.
type ResearchConfig struct {
	Enabled bool `koanf:"enabled"`
}

// ToolsConfig holds calculator-tool configuration.
type ToolsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8780,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Generation: GenerationConfig{
			Provider:   "openai",
			Model:      "qwen-plus",
			Timeout:    Duration(60 * time.Second),
			RateLimit:  2,
			MaxRetries: 2,
		},
		Retrieval: RetrievalConfig{
			Enabled:    true,
			Path:       "~/.config/renovad/knowledge",
			Collection: "renovation_kb",
			TopK:       5,
		},
		Memory: MemoryConfig{
			Enabled:        true,
			WorkingStore:   "memory",
			NATSBucket:     "renovad_working_memory",
			ShortTermLimit: 20,
		},
		Decision: DecisionConfig{
			OverwriteOnRematch: true,
		},
		Research: ResearchConfig{Enabled: true},
		Tools:    ToolsConfig{Enabled: true},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.http_port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("generation.model is required")
	}
	if c.Generation.RateLimit <= 0 {
		return fmt.Errorf("generation.rate_limit must be > 0, got %v", c.Generation.RateLimit)
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("generation.max_retries must be >= 0, got %d", c.Generation.MaxRetries)
	}
	if c.Retrieval.Enabled && c.Retrieval.Collection == "" {
		return fmt.Errorf("retrieval.collection is required when retrieval is enabled")
	}
	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("retrieval.top_k must be >= 0, got %d", c.Retrieval.TopK)
	}
	switch c.Memory.WorkingStore {
	case "memory", "nats":
	default:
		return fmt.Errorf("memory.working_store must be 'memory' or 'nats', got %q", c.Memory.WorkingStore)
	}
	if c.Memory.WorkingStore == "nats" && c.Memory.NATSURL == "" {
		return fmt.Errorf("memory.nats_url is required when working_store is 'nats'")
	}
	if c.Memory.ShortTermLimit < 0 {
		return fmt.Errorf("memory.short_term_limit must be >= 0, got %d", c.Memory.ShortTermLimit)
	}
	return nil
}
