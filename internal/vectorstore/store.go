package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/milvus"
	"github.com/tmc/langchaingo/vectorstores/pgvector"

	"github.com/rahul/salesgpt/pkg/config"
)

const (
	BackendChromem  = "chromem"
	BackendPGVector = "pgvector"
	BackendMilvus   = "milvus"
)

// New builds the vector store named by cfg.Store. The catalog is indexed on
// every startup, so an existing collection is emptied first.
func New(ctx context.Context, cfg config.VectorConfig, embedder embeddings.Embedder) (vectorstores.VectorStore, error) {
	collection := cfg.Collection
	if collection == "" {
		collection = config.DefaultCollection
	}

	switch cfg.Store {
	case "", BackendChromem:
		store, err := NewChromem(cfg.Path, collection, embedder)
		if err != nil {
			return nil, err
		}
		if err := store.Reset(); err != nil {
			return nil, err
		}
		return store, nil

	case BackendPGVector:
		if cfg.URL == "" {
			return nil, fmt.Errorf("vectorstore %s: url is required", cfg.Store)
		}
		store, err := pgvector.New(ctx,
			pgvector.WithConnectionURL(cfg.URL),
			pgvector.WithEmbedder(embedder),
			pgvector.WithCollectionName(collection),
			pgvector.WithPreDeleteCollection(true),
		)
		if err != nil {
			return nil, fmt.Errorf("connecting pgvector: %w", err)
		}
		return store, nil

	case BackendMilvus:
		if cfg.URL == "" {
			return nil, fmt.Errorf("vectorstore %s: url is required", cfg.Store)
		}
		idx, err := entity.NewIndexAUTOINDEX(entity.L2)
		if err != nil {
			return nil, fmt.Errorf("milvus index: %w", err)
		}
		store, err := milvus.New(ctx, client.Config{Address: cfg.URL},
			milvus.WithEmbedder(embedder),
			// Milvus collection names only allow letters, digits and underscores.
			milvus.WithCollectionName(strings.ReplaceAll(collection, "-", "_")),
			milvus.WithIndex(idx),
			milvus.WithDropOld(),
		)
		if err != nil {
			return nil, fmt.Errorf("connecting milvus: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("vectorstore: unknown backend %q", cfg.Store)
	}
}
