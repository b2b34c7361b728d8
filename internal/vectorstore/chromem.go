// Package vectorstore holds the vector stores catalog chunks are indexed in.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// ScoreKey is the metadata key similarity scores are reported under.
const ScoreKey = "score"

var ErrMissingEmbedder = errors.New("vectorstore: embedder is required")

// Chromem is a vectorstores.VectorStore over an embedded chromem-go collection.
type Chromem struct {
	db         *chromem.DB
	name       string
	collection *chromem.Collection
	embedder   embeddings.Embedder
}

var _ vectorstores.VectorStore = (*Chromem)(nil)

// NewChromem opens (or creates) collection in an in-memory database, or in a
// persistent one under path when path is not empty.
func NewChromem(path, collection string, embedder embeddings.Embedder) (*Chromem, error) {
	if embedder == nil {
		return nil, ErrMissingEmbedder
	}

	db := chromem.NewDB()
	if path != "" {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("opening chromem db %s: %w", path, err)
		}
	}

	c := &Chromem{db: db, name: collection, embedder: embedder}
	col, err := db.GetOrCreateCollection(collection, nil, c.embedQuery)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", collection, err)
	}
	c.collection = col
	return c, nil
}

// Reset drops every document in the collection, including its files on disk.
func (c *Chromem) Reset() error {
	if err := c.db.DeleteCollection(c.name); err != nil {
		return fmt.Errorf("deleting collection %s: %w", c.name, err)
	}
	col, err := c.db.CreateCollection(c.name, nil, c.embedQuery)
	if err != nil {
		return fmt.Errorf("collection %s: %w", c.name, err)
	}
	c.collection = col
	return nil
}

func (c *Chromem) embedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embedder.EmbedQuery(ctx, text)
}

// Count returns the number of stored documents.
func (c *Chromem) Count() int {
	return c.collection.Count()
}

func (c *Chromem) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	opts := c.options(options)

	kept := make([]schema.Document, 0, len(docs))
	for _, d := range docs {
		if opts.Deduplicater != nil && opts.Deduplicater(ctx, d) {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	texts := make([]string, len(kept))
	for i, d := range kept {
		texts[i] = d.PageContent
	}
	vectors, err := opts.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding documents: %w", err)
	}
	if len(vectors) != len(kept) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(kept))
	}

	ids := make([]string, len(kept))
	cdocs := make([]chromem.Document, len(kept))
	for i, d := range kept {
		ids[i] = documentID(d)
		cdocs[i] = chromem.Document{
			ID:        ids[i],
			Metadata:  stringMetadata(d.Metadata),
			Embedding: vectors[i],
			Content:   d.PageContent,
		}
	}

	if err := c.collection.AddDocuments(ctx, cdocs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}
	return ids, nil
}

func (c *Chromem) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := c.options(options)

	n := min(numDocuments, c.collection.Count())
	if n <= 0 {
		return nil, nil
	}

	where, _ := opts.Filters.(map[string]string)
	results, err := c.collection.Query(ctx, query, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	docs := make([]schema.Document, 0, len(results))
	for _, r := range results {
		if opts.ScoreThreshold > 0 && r.Similarity < opts.ScoreThreshold {
			continue
		}
		meta := make(map[string]any, len(r.Metadata)+1)
		for k, v := range r.Metadata {
			meta[k] = v
		}
		meta[ScoreKey] = r.Similarity
		docs = append(docs, schema.Document{
			PageContent: r.Content,
			Metadata:    meta,
			Score:       r.Similarity,
		})
	}
	return docs, nil
}

func (c *Chromem) options(options []vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{}
	for _, o := range options {
		o(&opts)
	}
	if opts.Embedder == nil {
		opts.Embedder = c.embedder
	}
	return opts
}

// documentID is stable for a document so indexing it again overwrites it.
// Chunks carrying source and chunk metadata are keyed on those, anything else
// on its content.
func documentID(d schema.Document) string {
	key := d.PageContent
	if src, ok := d.Metadata["source"]; ok {
		if chunk, ok := d.Metadata["chunk"]; ok {
			key = fmt.Sprintf("%v#%v", src, chunk)
		}
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func stringMetadata(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}
