package sqlengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rahul/salesgpt/internal/governance"
	"github.com/tmc/langchaingo/tools/sqldatabase"
)

// ErrStatementDenied is returned when a policy rejects a generated statement.
var ErrStatementDenied = errors.New("statement denied by policy")

// Guarded wraps an Engine so every Query passes a policy check first.
type Guarded struct {
	sqldatabase.Engine
	Policy governance.PolicyEngine
}

// Guard returns engine wrapped with policy. A nil policy means read-only SQL.
func Guard(engine sqldatabase.Engine, policy governance.PolicyEngine) *Guarded {
	if policy == nil {
		policy = governance.NewReadOnlySQLPolicy()
	}
	return &Guarded{Engine: engine, Policy: policy}
}

func (g *Guarded) Query(ctx context.Context, query string, args ...any) ([]string, [][]string, error) {
	res, err := g.Policy.Evaluate(ctx, governance.Request{Tool: "sql", Arguments: query})
	if err != nil {
		return nil, nil, err
	}
	if !res.Allowed() {
		return nil, nil, fmt.Errorf("%w: %s", ErrStatementDenied, res.Reason)
	}
	return g.Engine.Query(ctx, query, args...)
}
