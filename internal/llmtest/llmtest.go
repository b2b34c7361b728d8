// Package llmtest provides in-process stand-ins for language models and
// embedders so chains and agents can be exercised without a network.
package llmtest

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/tmc/langchaingo/llms"
)

// ErrNoResponses is returned once a Model has used up its scripted replies.
var ErrNoResponses = errors.New("llmtest: no scripted responses left")

// Reply is one scripted model turn: text, tool calls, or both.
type Reply struct {
	Content   string
	ToolCalls []llms.ToolCall
}

// Model replays scripted replies in order and records every prompt it saw
// along with the call options it was given.
type Model struct {
	mu      sync.Mutex
	replies []Reply
	Prompts []string
	Calls   [][]llms.MessageContent
	Options [][]llms.CallOption
}

var _ llms.Model = (*Model)(nil)

// NewModel returns a Model that answers with texts in order.
func NewModel(texts ...string) *Model {
	m := &Model{}
	for _, t := range texts {
		m.replies = append(m.replies, Reply{Content: t})
	}
	return m
}

// Push appends scripted replies.
func (m *Model) Push(replies ...Reply) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
	return m
}

func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var prompt strings.Builder
	for _, msg := range messages {
		for _, p := range msg.Parts {
			switch part := p.(type) {
			case llms.TextContent:
				prompt.WriteString(part.Text)
				prompt.WriteString("\n")
			case llms.ToolCallResponse:
				prompt.WriteString(part.Content)
				prompt.WriteString("\n")
			}
		}
	}
	m.Prompts = append(m.Prompts, prompt.String())
	m.Calls = append(m.Calls, append([]llms.MessageContent(nil), messages...))
	m.Options = append(m.Options, append([]llms.CallOption(nil), options...))

	if len(m.replies) == 0 {
		return nil, ErrNoResponses
	}
	r := m.replies[0]
	m.replies = m.replies[1:]

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:   r.Content,
			ToolCalls: r.ToolCalls,
		}},
	}, nil
}

func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// LastPrompt returns the text of the most recent request.
func (m *Model) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}

// CallOptions resolves the options of request i on top of base.
func (m *Model) CallOptions(i int, base llms.CallOptions) llms.CallOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.Options[i] {
		o(&base)
	}
	return base
}

// Dimensions of vectors produced by Embedder.
const Dimensions = 64

// Embedder hashes words into a fixed-size bag-of-words vector, so texts that
// share words land close together.
type Embedder struct {
	mu      sync.Mutex
	Queries []string
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embed(t)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.Queries = append(e.Queries, text)
	e.mu.Unlock()
	return embed(text), nil
}

func embed(text string) []float32 {
	v := make([]float32, Dimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[h.Sum32()%Dimensions]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x * x)
	}
	if norm == 0 {
		v[0] = 1
		return v
	}
	n := float32(math.Sqrt(norm))
	for i := range v {
		v[i] /= n
	}
	return v
}
