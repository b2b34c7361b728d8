package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lctools "github.com/tmc/langchaingo/tools"

	"github.com/rahul/salesgpt/internal/knowledge"
)

const (
	ProductSearchName        = "ProductSearch"
	ProductSearchDescription = "useful for when you need to answer questions about product information"
)

var ErrEmptyQuery = errors.New("product search query is empty")

// ProductSearch answers product questions from the knowledge base.
type ProductSearch struct {
	KB knowledge.KnowledgeBase
}

var (
	_ Tool         = (*ProductSearch)(nil)
	_ lctools.Tool = (*ProductSearch)(nil)
)

func NewProductSearch(kb knowledge.KnowledgeBase) *ProductSearch {
	return &ProductSearch{KB: kb}
}

func (p *ProductSearch) Name() string {
	return ProductSearchName
}

func (p *ProductSearch) Description() string {
	return ProductSearchDescription
}

func (p *ProductSearch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The question about products, prices or availability",
			},
		},
		"required": []string{"query"},
	}
}

// Execute accepts {"query": "..."} or the question as a bare string.
func (p *ProductSearch) Execute(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if strings.HasPrefix(query, "{") {
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(query), &args); err != nil {
			return "", fmt.Errorf("invalid input: %v", err)
		}
		query = strings.TrimSpace(args.Query)
	}
	return p.Call(ctx, query)
}

// Call runs the question through the knowledge base unchanged.
func (p *ProductSearch) Call(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyQuery
	}
	if p.KB == nil {
		return "", errors.New("product search has no knowledge base")
	}
	return p.KB.Run(ctx, input)
}

// GetTools returns the tools a sales agent is given over kb.
func GetTools(kb knowledge.KnowledgeBase) []lctools.Tool {
	return []lctools.Tool{NewProductSearch(kb)}
}

// RegisterSalesTools adds the sales tools over kb to r.
func RegisterSalesTools(r *Registry, kb knowledge.KnowledgeBase) {
	r.Register(NewProductSearch(kb))
}
