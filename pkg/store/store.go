// Package store defines the article persistence interface implemented by
// the vector-driver and Postgres backends.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mcpress/mcpress/pkg/article"
)

// ErrNotFound is returned when an article does not exist.
var ErrNotFound = errors.New("article not found")

// SearchOptions narrow a semantic search.
type SearchOptions struct {
	// Limit caps the number of results. Zero means the default of 10.
	Limit int

	// SimilarityThreshold drops results scoring below this floor.
	SimilarityThreshold float32

	// Category keeps only articles in this category when set.
	Category string

	// Source keeps only articles from this organization when set.
	Source string

	// Since keeps only articles published on or after this date
	// (YYYY-MM-DD) when set.
	Since string
}

// ArticleStore persists articles and serves semantic queries over them.
type ArticleStore interface {
	// Save upserts an article keyed by URL. Saving a URL that already
	// exists updates the record in place, keeping its ID and creation time.
	// A failed embedding never blocks the save: the article is stored
	// without a vector and excluded from search until re-saved.
	Save(ctx context.Context, req article.SaveRequest) (*article.Article, error)

	// Get retrieves an article by ID.
	Get(ctx context.Context, id uuid.UUID) (*article.Article, error)

	// GetByURL retrieves an article by its URL.
	GetByURL(ctx context.Context, url string) (*article.Article, error)

	// Search finds articles semantically similar to the query text.
	Search(ctx context.Context, query string, opts SearchOptions) ([]article.Match, error)

	// List returns articles matching the filter, newest first where the
	// backend supports ordering.
	List(ctx context.Context, filter article.ListFilter) ([]article.Article, error)

	// Close releases resources held by the store.
	Close() error
}
