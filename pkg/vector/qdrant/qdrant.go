// Package qdrant provides a Qdrant vector database driver implementation
// over its gRPC client. Document IDs must be UUIDs since Qdrant only
// accepts UUID or integer point IDs.
package qdrant

import (
	"context"
	"fmt"

	qd "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for article embeddings.
	DefaultCollectionName = "articles"

	// DefaultDimensions is used for zero-vector placeholders when a
	// document arrives without an embedding.
	DefaultDimensions = 1536

	// payloadText is the reserved payload key holding the document text.
	payloadText = "_text"
)

// QdrantDriver implements vector.VectorDriver against a Qdrant server.
type QdrantDriver struct {
	client         *qd.Client
	collectionName string
	dimensions     uint
	logger         *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant server host.
	Host string

	// Port is the Qdrant gRPC port (usually 6334).
	Port int

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the embedding size. Defaults to DefaultDimensions.
	Dimensions uint
}

// NewQdrantDriver connects to Qdrant and ensures the collection exists.
func NewQdrantDriver(c Config, logger *zap.Logger) (*QdrantDriver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if c.Port == 0 {
		c.Port = 6334
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	dimensions := c.Dimensions
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}

	client, err := qd.NewClient(&qd.Config{
		Host: c.Host,
		Port: c.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}

	d := &QdrantDriver{
		client:         client,
		collectionName: collectionName,
		dimensions:     dimensions,
		logger:         logger,
	}

	if err := d.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("ensuring collection %q: %w", collectionName, err)
	}

	logger.Info("connected to Qdrant",
		zap.String("host", c.Host),
		zap.Int("port", c.Port),
		zap.String("collection", collectionName),
	)

	return d, nil
}

func (d *QdrantDriver) ensureCollection(ctx context.Context) error {
	exists, err := d.client.CollectionExists(ctx, d.collectionName)
	if err != nil {
		return fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	if exists {
		return nil
	}

	return d.client.CreateCollection(ctx, &qd.CreateCollection{
		CollectionName: d.collectionName,
		VectorsConfig: qd.NewVectorsConfig(&qd.VectorParams{
			Size:     uint64(d.dimensions),
			Distance: qd.Distance_Cosine,
		}),
	})
}

// Upsert stores documents, replacing any existing point with the same ID.
// Documents without an embedding get a zero vector and are flagged so
// queries skip them.
func (d *QdrantDriver) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qd.PointStruct, len(docs))
	for i, doc := range docs {
		payload := make(map[string]any, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			payload[k] = v
		}
		payload[payloadText] = doc.Text

		embedding := doc.Embedding
		if len(embedding) > 0 {
			payload[vector.MetaHasEmbedding] = "true"
		} else {
			embedding = make([]float32, d.dimensions)
			payload[vector.MetaHasEmbedding] = "false"
		}

		points[i] = &qd.PointStruct{
			Id:      qd.NewID(doc.ID),
			Vectors: qd.NewVectors(embedding...),
			Payload: qd.NewValueMap(payload),
		}
	}

	_, err := d.client.Upsert(ctx, &qd.UpsertPoints{
		CollectionName: d.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("upserted documents to qdrant",
		zap.Int("count", len(docs)),
	)

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *QdrantDriver) Query(ctx context.Context, embedding []float32, topK int, filter vector.Filter) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	// Placeholder vectors must never surface in similarity results.
	must := []*qd.Condition{qd.NewMatch(vector.MetaHasEmbedding, "true")}
	for k, v := range filter {
		must = append(must, qd.NewMatch(k, v))
	}

	points, err := d.client.Query(ctx, &qd.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qd.NewQuery(embedding...),
		Limit:          qd.PtrOf(uint64(topK)),
		Filter:         &qd.Filter{Must: must},
		WithPayload:    qd.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		results = append(results, vector.QueryResult{
			Document: documentFromPayload(pointID(p.Id), p.Payload, nil),
			Score:    p.Score,
		})
	}

	d.logger.Debug("queried qdrant",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Get retrieves documents by their IDs.
func (d *QdrantDriver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*qd.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qd.NewID(id)
	}

	points, err := d.client.Get(ctx, &qd.GetPoints{
		CollectionName: d.collectionName,
		Ids:            pointIDs,
		WithPayload:    qd.NewWithPayload(true),
		WithVectors:    qd.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting points: %w", err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, documentFromPayload(pointID(p.Id), p.Payload, p.Vectors))
	}
	return docs, nil
}

// Find returns documents matching a metadata filter. Qdrant's scroll API
// has no numeric offset, so the driver over-fetches and slices.
func (d *QdrantDriver) Find(ctx context.Context, filter vector.Filter, limit, offset int) ([]vector.Document, error) {
	var qdFilter *qd.Filter
	if len(filter) > 0 {
		var must []*qd.Condition
		for k, v := range filter {
			must = append(must, qd.NewMatch(k, v))
		}
		qdFilter = &qd.Filter{Must: must}
	}

	fetch := uint32(limit + offset)
	if limit <= 0 {
		fetch = 0
	}

	scroll := &qd.ScrollPoints{
		CollectionName: d.collectionName,
		Filter:         qdFilter,
		WithPayload:    qd.NewWithPayload(true),
		WithVectors:    qd.NewWithVectors(true),
	}
	if fetch > 0 {
		scroll.Limit = qd.PtrOf(fetch)
	}

	points, err := d.client.Scroll(ctx, scroll)
	if err != nil {
		return nil, fmt.Errorf("scrolling points: %w", err)
	}

	if offset >= len(points) {
		return nil, nil
	}
	points = points[offset:]
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, documentFromPayload(pointID(p.Id), p.Payload, p.Vectors))
	}
	return docs, nil
}

// Delete removes documents by their IDs.
func (d *QdrantDriver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qd.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qd.NewID(id)
	}

	_, err := d.client.Delete(ctx, &qd.DeletePoints{
		CollectionName: d.collectionName,
		Points:         qd.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}

	d.logger.Debug("deleted documents from qdrant",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Close releases resources held by the driver.
func (d *QdrantDriver) Close() error {
	return d.client.Close()
}

func pointID(id *qd.PointId) string {
	if id == nil {
		return ""
	}
	return id.GetUuid()
}

// documentFromPayload rebuilds a Document from a point's payload, mapping
// placeholder zero vectors back to nil embeddings.
func documentFromPayload(id string, payload map[string]*qd.Value, vectors *qd.VectorsOutput) vector.Document {
	doc := vector.Document{ID: id}

	meta := make(map[string]string, len(payload))
	hasEmbedding := true
	for k, v := range payload {
		switch k {
		case payloadText:
			doc.Text = v.GetStringValue()
		case vector.MetaHasEmbedding:
			meta[k] = v.GetStringValue()
			hasEmbedding = v.GetStringValue() != "false"
		default:
			meta[k] = v.GetStringValue()
		}
	}
	if len(meta) > 0 {
		doc.Metadata = meta
	}

	if hasEmbedding && vectors != nil {
		doc.Embedding = vectors.GetVector().GetData()
	}

	return doc
}

var _ vector.VectorDriver = (*QdrantDriver)(nil)
