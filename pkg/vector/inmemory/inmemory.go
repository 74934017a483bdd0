// Package inmemory provides a process-local vector driver with brute-force
// cosine similarity. It backs tests and the "memory" store provider.
package inmemory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/mcpress/mcpress/pkg/vector"
)

// Driver implements vector.VectorDriver entirely in memory.
type Driver struct {
	mu    sync.RWMutex
	docs  map[string]vector.Document
	order []string
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		docs: make(map[string]vector.Document),
	}
}

// Upsert stores documents, replacing any existing document with the same ID.
func (d *Driver) Upsert(_ context.Context, docs []vector.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if _, exists := d.docs[doc.ID]; !exists {
			d.order = append(d.order, doc.ID)
		}
		d.docs[doc.ID] = doc
	}
	return nil
}

// Query finds the topK most similar documents by cosine similarity.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int, filter vector.Filter) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var results []vector.QueryResult
	for _, doc := range d.docs {
		if len(doc.Embedding) == 0 || !filter.Matches(doc.Metadata) {
			continue
		}
		results = append(results, vector.QueryResult{
			Document: doc,
			Score:    cosineSimilarity(embedding, doc.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Get retrieves documents by their IDs. Missing IDs are skipped.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := d.docs[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Find returns documents matching a metadata filter in insertion order.
func (d *Driver) Find(_ context.Context, filter vector.Filter, limit, offset int) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matched []vector.Document
	for _, id := range d.order {
		doc, ok := d.docs[id]
		if !ok || !filter.Matches(doc.Metadata) {
			continue
		}
		matched = append(matched, doc)
	}

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(_ context.Context, ids []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range ids {
		if _, ok := d.docs[id]; !ok {
			continue
		}
		delete(d.docs, id)
		for i, ordered := range d.order {
			if ordered == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ vector.VectorDriver = (*Driver)(nil)
