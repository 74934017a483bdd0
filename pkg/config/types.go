package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config represents the persistent mcpress configuration stored as
// config.toml in the .mcpress/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	Reader      ReaderConfig      `toml:"reader"`
	LLM         LLMConfig         `toml:"llm"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Articles    ArticlesConfig    `toml:"articles"`
	Search      SearchConfig      `toml:"search"`
	Events      EventsConfig      `toml:"events"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// API server (e.g. mcpress ingest, mcpress search, mcpress seed).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// ReaderConfig holds settings for the URL-to-markdown reader.
type ReaderConfig struct {
	// Provider selects the reader backend: "jina" or "readability".
	Provider string `toml:"provider,omitempty"`

	// Target is the reader service base URL (jina only).
	Target string `toml:"target,omitempty"`
}

// LLMConfig holds settings for the extraction LLM.
type LLMConfig struct {
	// Target is an OpenAI-compatible base URL. Groq by default.
	Target string `toml:"target,omitempty"`
	Model  string `toml:"model,omitempty"`

	// APIKey is usually left empty here and supplied via the
	// MCPRESS_LLM_API_KEY or GROQ_API_KEY environment variables.
	APIKey string `toml:"api_key,omitempty"`
}

// ResolveAPIKey returns the configured key, falling back to the environment.
func (c LLMConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if k := os.Getenv("MCPRESS_LLM_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("GROQ_API_KEY")
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the embedding backend: "openai" or "ollama".
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`

	// APIKey is usually left empty here and supplied via the
	// MCPRESS_EMBEDDING_API_KEY or OPENAI_API_KEY environment variables.
	APIKey string `toml:"api_key,omitempty"`
}

// ResolveAPIKey returns the configured key, falling back to the environment.
func (c EmbeddingConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if k := os.Getenv("MCPRESS_EMBEDDING_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("OPENAI_API_KEY")
}

// VectorStoreConfig holds article store settings.
type VectorStoreConfig struct {
	// Provider selects the store backend:
	// "sqlite", "chroma", "qdrant", "postgres" or "memory".
	Provider string `toml:"provider,omitempty"`

	// Target is provider-dependent: a file path for sqlite, a base URL for
	// chroma, host:port for qdrant, a DSN for postgres.
	Target string `toml:"target,omitempty"`
}

// ArticlesConfig holds article validation settings.
type ArticlesConfig struct {
	// Categories is the allow-list the extractor validates against.
	Categories []string `toml:"categories,omitempty"`
}

// SearchConfig holds semantic search settings.
type SearchConfig struct {
	// SimilarityThreshold drops results scoring below this floor.
	SimilarityThreshold float32 `toml:"similarity_threshold,omitempty"`
}

// EventsConfig holds article-event publishing settings.
type EventsConfig struct {
	// Provider selects the publisher backend: "none" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"reader.provider": {
		get: func(c *Config) string { return c.Reader.Provider },
		set: func(c *Config, v string) error { c.Reader.Provider = v; return nil },
	},
	"reader.target": {
		get: func(c *Config) string { return c.Reader.Target },
		set: func(c *Config, v string) error { c.Reader.Target = v; return nil },
	},
	"llm.target": {
		get: func(c *Config) string { return c.LLM.Target },
		set: func(c *Config, v string) error { c.LLM.Target = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.target": {
		get: func(c *Config) string { return c.VectorStore.Target },
		set: func(c *Config, v string) error { c.VectorStore.Target = v; return nil },
	},
	"articles.categories": {
		get: func(c *Config) string { return strings.Join(c.Articles.Categories, ",") },
		set: func(c *Config, v string) error {
			c.Articles.Categories = splitCommaStripped(v)
			return nil
		},
	},
	"search.similarity_threshold": {
		get: func(c *Config) string {
			if c.Search.SimilarityThreshold == 0 {
				return ""
			}
			return strconv.FormatFloat(float64(c.Search.SimilarityThreshold), 'f', -1, 32)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return fmt.Errorf("invalid value for search.similarity_threshold: %w", err)
			}
			c.Search.SimilarityThreshold = float32(f)
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = splitCommaStripped(v)
			return nil
		},
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}

// splitCommaStripped splits a comma-separated value and trims each entry,
// dropping empties.
func splitCommaStripped(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
