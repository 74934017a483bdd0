package testutils

import (
	"context"
	"fmt"

	"github.com/mcpress/mcpress/pkg/vector"
)

// FailingVectorDriver wraps another driver and fails configured operations,
// for exercising store error paths.
type FailingVectorDriver struct {
	vector.VectorDriver

	FailUpsert bool
	FailQuery  bool
	FailFind   bool
}

func (d *FailingVectorDriver) Upsert(ctx context.Context, docs []vector.Document) error {
	if d.FailUpsert {
		return fmt.Errorf("mock upsert failure")
	}
	return d.VectorDriver.Upsert(ctx, docs)
}

func (d *FailingVectorDriver) Query(ctx context.Context, embedding []float32, topK int, filter vector.Filter) ([]vector.QueryResult, error) {
	if d.FailQuery {
		return nil, fmt.Errorf("mock query failure")
	}
	return d.VectorDriver.Query(ctx, embedding, topK, filter)
}

func (d *FailingVectorDriver) Find(ctx context.Context, filter vector.Filter, limit, offset int) ([]vector.Document, error) {
	if d.FailFind {
		return nil, fmt.Errorf("mock find failure")
	}
	return d.VectorDriver.Find(ctx, filter, limit, offset)
}
