package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rahul/salesgpt/internal/agent"
	"github.com/rahul/salesgpt/internal/catalog"
	"github.com/rahul/salesgpt/internal/knowledge"
	"github.com/rahul/salesgpt/internal/llm"
	"github.com/rahul/salesgpt/internal/observability"
	"github.com/rahul/salesgpt/internal/store"
	"github.com/rahul/salesgpt/internal/tools"
	"github.com/rahul/salesgpt/pkg/config"
)

// app is the wired knowledge base, tools and agent of one command run.
type app struct {
	kb       *knowledge.Base
	registry *tools.Registry
	agent    *agent.SalesAgent
	history  *store.HistoryStore
}

// newApp builds the knowledge base and, when withAgent is set, the sales
// agent with its conversation store.
func newApp(ctx context.Context, cfg *config.Config, withAgent bool) (*app, error) {
	model, provider, err := llm.NewModel(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("provider", provider).Msg("model ready")

	deps := knowledge.Deps{
		LLM:     model,
		Vector:  cfg.Vector,
		DBURL:   cfg.Database.URL,
		TopK:    cfg.Database.TopK,
		Catalog: catalog.Options{RenderJS: cfg.Catalog.RenderJS},
	}
	if !knowledge.UsesDatabase(cfg.Catalog.Source, cfg.Database.URL) {
		if deps.Embedder, err = llm.NewEmbedder(cfg); err != nil {
			return nil, err
		}
	}

	kb, err := knowledge.Setup(ctx, cfg.Catalog.Source, deps)
	if err != nil {
		return nil, fmt.Errorf("setting up knowledge base: %w", err)
	}
	observability.SetKnowledgeBase(string(kb.Kind), kb.Source)

	a := &app{kb: kb, registry: tools.NewRegistry()}
	tools.RegisterSalesTools(a.registry, kb)

	if withAgent {
		a.history, err = store.NewHistoryStore(cfg.Memory.Path)
		if err != nil {
			kb.Close()
			return nil, fmt.Errorf("opening history: %w", err)
		}
		a.agent = agent.NewSalesAgent(model, a.registry, a.history, agent.NewPromptManager(cfg.App.Prompts))
		a.agent.Logger = observability.NewLogger(cfg.App.LLMLog)
	}
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	errs = append(errs, a.kb.Close())
	return errors.Join(errs...)
}
