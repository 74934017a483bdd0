// Package api provides the HTTP API server for ingesting and querying
// articles.
package api

import (
	"context"

	"github.com/mcpress/mcpress/pkg/article"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// SimilarityThreshold is the default search score floor, applied when
	// a request does not carry its own similarity_threshold.
	SimilarityThreshold float32
}

// Extractor turns fetched page content into structured article fields.
// Satisfied by pkg/extractor.
type Extractor interface {
	Extract(ctx context.Context, url, pageContent string) (*article.Content, error)
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
