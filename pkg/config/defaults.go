package config

import "github.com/mcpress/mcpress/pkg/article"

const currentConfigVersion = 1

// NewDefaultConfig returns the configuration mcpress runs with when no
// config.toml exists. It is the single source of truth for defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Version: currentConfigVersion,
		API: APIConfig{
			Listen: ":8080",
		},
		Client: ClientConfig{
			APITarget: "http://localhost:8080",
		},
		Reader: ReaderConfig{
			Provider: "jina",
			Target:   "https://r.jina.ai",
		},
		LLM: LLMConfig{
			Target: "https://api.groq.com/openai/v1",
			Model:  "llama-3.1-8b-instant",
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Target:     "https://api.openai.com/v1",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		VectorStore: VectorStoreConfig{
			Provider: "sqlite",
			Target:   "mcpress.db",
		},
		Articles: ArticlesConfig{
			Categories: append([]string(nil), article.DefaultCategories...),
		},
		Search: SearchConfig{
			SimilarityThreshold: 0,
		},
		Events: EventsConfig{
			Provider: "none",
			Topic:    "mcpress.articles",
		},
	}
}
