package governance

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a tool call or statement to be evaluated.
type Request struct {
	Tool      string
	Arguments string
	ChatID    string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// Allowed reports whether the result permits the call.
func (r Result) Allowed() bool {
	return r.Effect == EffectAllow
}

// PolicyEngine evaluates tool calls against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	DeniedTools map[string]bool
	DeniedRegex []*regexp.Regexp
	// AllowedPrefixes, when set, requires the trimmed arguments to start with
	// one of the listed prefixes (case-insensitive).
	AllowedPrefixes []string
	// StripSQLLiterals blanks quoted strings and identifiers before the
	// DeniedRegex patterns run, so a search term never reads as a keyword.
	StripSQLLiterals bool
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedTools: make(map[string]bool),
		DeniedRegex: make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) DenyTool(name string) {
	e.DeniedTools[name] = true
}

func (e *DefaultPolicyEngine) DenyArguments(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedTools[req.Tool] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Tool '%s' is restricted by system policy", req.Tool),
		}, nil
	}

	if len(e.AllowedPrefixes) > 0 {
		upper := strings.ToUpper(strings.TrimSpace(req.Arguments))
		ok := false
		for _, p := range e.AllowedPrefixes {
			if strings.HasPrefix(upper, strings.ToUpper(p)) {
				ok = true
				break
			}
		}
		if !ok {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Arguments must start with one of %v", e.AllowedPrefixes),
			}, nil
		}
	}

	args := req.Arguments
	if e.StripSQLLiterals {
		args = stripSQLLiterals(args)
	}
	for _, re := range e.DeniedRegex {
		if re.MatchString(args) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Arguments match restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}

// readOnlySQLPatterns reject writes, stacked statements and the usual
// injection shapes in model-generated SQL.
var readOnlySQLPatterns = []string{
	`(?i)\b(INSERT|UPDATE|DELETE|MERGE)\s+`,
	`(?i)\bREPLACE\s+INTO\b`,
	`(?i)\b(DROP|ALTER|CREATE|TRUNCATE|GRANT|REVOKE|ATTACH|DETACH|VACUUM|PRAGMA)\b`,
	`(?i);\s*\S`,
	`(?i)\bINTO\s+(OUTFILE|DUMPFILE)\b`,
	`(?i)\bLOAD(_FILE\s*\(|\s+DATA\b)`,
	`(?i)\b(SLEEP|BENCHMARK|PG_SLEEP)\s*\(`,
	`(?i)\bWAITFOR\s+DELAY\b`,
	`/\*.*?\*/`,
}

var sqlLiteral = regexp.MustCompile("'(?:[^']|'')*'|\"(?:[^\"]|\"\")*\"|`[^`]*`")

// stripSQLLiterals replaces every quoted string or identifier with an empty
// one. Statements using backslash escapes are returned unchanged since their
// literal boundaries depend on the dialect.
func stripSQLLiterals(stmt string) string {
	if strings.Contains(stmt, `\`) {
		return stmt
	}
	return sqlLiteral.ReplaceAllStringFunc(stmt, func(lit string) string {
		return lit[:1] + lit[:1]
	})
}

// NewReadOnlySQLPolicy returns a policy that admits a single SELECT (or CTE)
// statement and nothing else.
func NewReadOnlySQLPolicy() *DefaultPolicyEngine {
	e := NewDefaultPolicyEngine()
	e.AllowedPrefixes = []string{"SELECT", "WITH"}
	e.StripSQLLiterals = true
	for _, p := range readOnlySQLPatterns {
		e.DeniedRegex = append(e.DeniedRegex, regexp.MustCompile(p))
	}
	return e
}

// NewAgentPolicy returns the policy applied to agent tool calls.
func NewAgentPolicy() *DefaultPolicyEngine {
	e := NewDefaultPolicyEngine()
	// Prompt-injection attempts that try to smuggle statements through the tool input.
	_ = e.DenyArguments(`(?i)\bDROP\s+TABLE\b`)
	_ = e.DenyArguments(`(?i)\bDELETE\s+FROM\b`)
	_ = e.DenyArguments(`(?i)ignore (all )?previous instructions`)
	return e
}
