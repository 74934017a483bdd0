// Package vector provides interfaces and implementations for vector storage.
package vector

import "context"

// Document represents a stored item with its embedding and metadata.
type Document struct {
	// ID is a unique identifier for the document.
	ID string

	// Text is the content the embedding was computed from.
	Text string

	// Metadata holds flat string fields attached to the document. Backends
	// can filter on these.
	Metadata map[string]string

	// Embedding is the vector representation of the document content. A nil
	// embedding is allowed: such documents are stored and listable but never
	// returned from similarity queries.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Filter is an equality match on metadata fields. All entries must match.
type Filter map[string]string

// Matches reports whether every filter entry equals the corresponding
// metadata field.
func (f Filter) Matches(metadata map[string]string) bool {
	for k, v := range f {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// MetaHasEmbedding marks whether a document carries a real embedding.
// Backends that cannot store nil vectors write a zero vector and set this
// to "false" so similarity queries can exclude the document.
const MetaHasEmbedding = "has_embedding"

// VectorDriver handles storage and retrieval of documents with embeddings.
type VectorDriver interface {
	// Upsert stores documents, replacing any existing document with the
	// same ID.
	Upsert(ctx context.Context, docs []Document) error

	// Query finds the topK documents most similar to the given embedding,
	// optionally narrowed by a metadata filter.
	Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]QueryResult, error)

	// Get retrieves documents by their IDs.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Find returns documents matching a metadata filter, paginated. A nil
	// filter matches everything.
	Find(ctx context.Context, filter Filter, limit, offset int) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
