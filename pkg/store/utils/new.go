package storeutils

import (
	"context"

	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/embeddings"
	"github.com/mcpress/mcpress/pkg/store"
	"github.com/mcpress/mcpress/pkg/store/postgres"
	"github.com/mcpress/mcpress/pkg/store/vectorstore"
	vectorutils "github.com/mcpress/mcpress/pkg/vector/utils"
)

type NewArticleStoreOpts struct {
	ProviderType string
	Target       string
	Dimensions   uint
	Embedder     embeddings.Embedder
	Logger       *zap.Logger
}

// NewArticleStore builds the configured store backend. The "postgres"
// provider talks to PostgreSQL directly; everything else goes through a
// vector driver.
func NewArticleStore(ctx context.Context, o *NewArticleStoreOpts) (store.ArticleStore, error) {
	if o.ProviderType == "postgres" {
		return postgres.New(ctx, postgres.Config{
			ConnStr:    o.Target,
			Dimensions: o.Dimensions,
		}, o.Embedder, o.Logger)
	}

	driver, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		ProviderType: o.ProviderType,
		Target:       o.Target,
		Dimensions:   o.Dimensions,
		Logger:       o.Logger,
	})
	if err != nil {
		return nil, err
	}

	return vectorstore.New(driver, o.Embedder, o.Logger), nil
}
