// Package knowledge builds the product knowledge base an agent queries
// through the ProductSearch tool: a retrieval chain over catalog text, or a
// SQL chain over the catalog database.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/tools/sqldatabase"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/rahul/salesgpt/internal/catalog"
	"github.com/rahul/salesgpt/internal/governance"
	"github.com/rahul/salesgpt/internal/sqlengine"
	"github.com/rahul/salesgpt/internal/vectorstore"
	"github.com/rahul/salesgpt/pkg/config"
)

var (
	ErrNoDatabaseURL = errors.New("database url is not configured (set DB_SQL_URL)")
	ErrMissingLLM    = errors.New("knowledge base needs a language model")
)

const (
	// DefaultNumResults is how many catalog chunks are stuffed into the prompt.
	DefaultNumResults = 4
	// DefaultTopK bounds the rows the SQL chain asks the model to select.
	DefaultTopK = 5
)

// KnowledgeBase answers natural-language questions against a fixed corpus.
type KnowledgeBase interface {
	Run(ctx context.Context, question string) (string, error)
}

type Kind string

const (
	KindText Kind = "text"
	KindSQL  Kind = "sql"
)

// Deps carries what the knowledge base is built from.
type Deps struct {
	LLM      llms.Model
	Embedder embeddings.Embedder
	// Store receives catalog chunks. When nil one is built from Vector.
	Store  vectorstores.VectorStore
	Vector config.VectorConfig
	// DBURL is the catalog database (DB_SQL_URL).
	DBURL   string
	TopK    int
	Catalog catalog.Options
	// SQLPolicy vets generated SQL. Nil means read-only.
	SQLPolicy governance.PolicyEngine
}

// Base is a KnowledgeBase backed by a langchaingo chain.
type Base struct {
	Kind   Kind
	Source string
	chain  chains.Chain
	closer io.Closer
}

var _ KnowledgeBase = (*Base)(nil)

// Run answers question with the model at temperature 0.
func (b *Base) Run(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is empty")
	}
	answer, err := chains.Run(ctx, b.chain, question, chains.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("%s knowledge base: %w", b.Kind, err)
	}
	return strings.TrimSpace(answer), nil
}

// Close releases the database connection of a SQL knowledge base.
func (b *Base) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Setup picks the knowledge base for productCatalog: the database when the
// argument is empty or names the configured database URL, catalog text otherwise.
func Setup(ctx context.Context, productCatalog string, deps Deps) (*Base, error) {
	if UsesDatabase(productCatalog, deps.DBURL) {
		return FromDB(ctx, deps.DBURL, deps)
	}
	return FromText(ctx, strings.TrimSpace(productCatalog), deps)
}

// UsesDatabase reports whether Setup takes the database branch.
func UsesDatabase(productCatalog, dbURL string) bool {
	src := strings.TrimSpace(productCatalog)
	return src == "" || src == strings.TrimSpace(dbURL)
}

// FromText indexes the catalog at path and builds a "stuff" retrieval QA chain.
func FromText(ctx context.Context, path string, deps Deps) (*Base, error) {
	if deps.LLM == nil {
		return nil, ErrMissingLLM
	}

	text, err := catalog.Load(ctx, path, deps.Catalog)
	if err != nil {
		return nil, err
	}
	chunks, err := SplitCatalog(text)
	if err != nil {
		return nil, err
	}

	docs := make([]schema.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = schema.Document{
			PageContent: c,
			Metadata:    map[string]any{"source": path, "chunk": i},
		}
	}

	store := deps.Store
	if store == nil {
		store, err = vectorstore.New(ctx, deps.Vector, deps.Embedder)
		if err != nil {
			return nil, err
		}
	}
	if _, err := store.AddDocuments(ctx, docs); err != nil {
		return nil, fmt.Errorf("indexing catalog: %w", err)
	}

	k := deps.Vector.NumResults
	if k <= 0 {
		k = DefaultNumResults
	}
	chain := chains.NewRetrievalQAFromLLM(deps.LLM, vectorstores.ToRetriever(store, k))

	log.Info().
		Str("source", path).
		Int("chunks", len(chunks)).
		Int("num_results", k).
		Msg("product knowledge base built from text")

	return &Base{Kind: KindText, Source: path, chain: chain}, nil
}

// FromDB connects to the catalog database and builds a SQL database chain.
func FromDB(ctx context.Context, dbURL string, deps Deps) (*Base, error) {
	if deps.LLM == nil {
		return nil, ErrMissingLLM
	}

	target, err := ParseDatabaseURL(dbURL)
	if err != nil {
		return nil, err
	}
	engine, err := target.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", target.Driver, err)
	}

	db, err := sqldatabase.NewSQLDatabase(sqlengine.Guard(engine, deps.SQLPolicy), nil)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("inspecting %s database: %w", target.Driver, err)
	}

	topK := deps.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	chain := chains.NewSQLDatabaseChain(deps.LLM, topK, db)

	log.Info().
		Str("driver", string(target.Driver)).
		Strs("tables", db.TableNames()).
		Int("top_k", topK).
		Msg("product knowledge base built from database")

	return &Base{Kind: KindSQL, Source: string(target.Driver), chain: chain, closer: db}, nil
}
