package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/rahul/salesgpt/internal/governance"
	"github.com/rahul/salesgpt/internal/observability"
	"github.com/rahul/salesgpt/internal/tools"
)

const (
	DefaultMaxSteps     = 10
	DefaultHistoryLimit = 10
)

// MaxStepsReply is returned when the model keeps calling tools past MaxSteps.
const MaxStepsReply = "I've reached the maximum reasoning steps for this question. Could you ask it in a simpler way?"

// EmptyReply stands in for an answer the model left blank.
const EmptyReply = "Sorry, I don't have an answer to that. Could you put it another way?"

// Brain defines the core intelligence interface for the agent.
type Brain interface {
	Think(ctx context.Context, chatID string, input string) (string, error)
}

type HistoryStore interface {
	AddMessage(ctx context.Context, chatID string, role llms.ChatMessageType, content string) error
	GetHistory(ctx context.Context, chatID string, limit int) ([]llms.MessageContent, error)
	ClearHistory(ctx context.Context, chatID string) error
}

// SalesAgent is a ReAct agent that answers prospects, calling ProductSearch
// (and any other registered tool) through function calling.
type SalesAgent struct {
	Model    llms.Model
	Registry *tools.Registry
	// History is optional; without it every turn starts fresh.
	History HistoryStore
	Prompts *PromptManager
	// Policy vets tool calls before they run. Nil allows everything.
	Policy governance.PolicyEngine
	Logger *observability.Logger

	MaxSteps     int
	HistoryLimit int
}

var _ Brain = (*SalesAgent)(nil)

func NewSalesAgent(model llms.Model, registry *tools.Registry, history HistoryStore, prompts *PromptManager) *SalesAgent {
	return &SalesAgent{
		Model:        model,
		Registry:     registry,
		History:      history,
		Prompts:      prompts,
		Policy:       governance.NewAgentPolicy(),
		Logger:       observability.NewLogger(""),
		MaxSteps:     DefaultMaxSteps,
		HistoryLimit: DefaultHistoryLimit,
	}
}

func (b *SalesAgent) Think(ctx context.Context, chatID string, input string) (string, error) {
	if b.Model == nil {
		return "", errors.New("sales agent has no model")
	}
	turnID := uuid.NewString()
	logger := b.logger()

	systemPrompt, err := b.Prompts.GetSalesPrompt()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load sales prompt, using built-in prompt")
		systemPrompt = DefaultSalesPrompt
	}

	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt)}
	if b.History != nil {
		history, err := b.History.GetHistory(ctx, chatID, b.historyLimit())
		if err != nil {
			log.Warn().Err(err).Str("chat_id", chatID).Msg("failed to load history")
		}
		messages = append(messages, history...)
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, input))

	var opts []llms.CallOption
	if b.Registry != nil {
		opts = append(opts, llms.WithTools(b.Registry.Definitions()))
	}

	maxSteps := b.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	var (
		finalResponse string
		answered      bool
	)
	for step := 1; step <= maxSteps; step++ {
		resp, err := b.Model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return "", fmt.Errorf("step %d: %w", step, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("step %d: model returned no choices", step)
		}
		choice := resp.Choices[0]
		logger.LogLLM(chatID, turnID, input, choice.Content, choice.ToolCalls)
		logUsage(logger, chatID, turnID, choice)
		if choice.Content != "" && len(choice.ToolCalls) > 0 {
			logger.LogReasoning(chatID, turnID, choice.Content)
		}

		var assistantParts []llms.ContentPart
		if choice.Content != "" {
			assistantParts = append(assistantParts, llms.TextContent{Text: choice.Content})
		}
		for _, tc := range choice.ToolCalls {
			assistantParts = append(assistantParts, tc)
		}
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeAI,
			Parts: assistantParts,
		})

		// No tool calls means the model has answered.
		if len(choice.ToolCalls) == 0 {
			finalResponse = choice.Content
			answered = true
			break
		}

		for _, tc := range choice.ToolCalls {
			result := b.runTool(ctx, chatID, turnID, tc)
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: tc.ID,
						Name:       tc.FunctionCall.Name,
						Content:    result,
					},
				},
			})
		}
	}

	switch {
	case !answered:
		finalResponse = MaxStepsReply
	case strings.TrimSpace(finalResponse) == "":
		finalResponse = EmptyReply
	}
	b.remember(ctx, chatID, input, finalResponse)
	return finalResponse, nil
}

// Reset forgets the conversation of chatID.
func (b *SalesAgent) Reset(ctx context.Context, chatID string) error {
	if b.History == nil {
		return nil
	}
	return b.History.ClearHistory(ctx, chatID)
}

func (b *SalesAgent) runTool(ctx context.Context, chatID, turnID string, tc llms.ToolCall) string {
	if tc.FunctionCall == nil {
		return "Error: tool call without a function"
	}
	name, args := tc.FunctionCall.Name, tc.FunctionCall.Arguments
	logger := b.logger()

	var tool tools.Tool
	if b.Registry != nil {
		tool = b.Registry.Get(name)
	}
	if tool == nil {
		return fmt.Sprintf("Error: Tool %s not found", name)
	}

	if b.Policy != nil {
		res, err := b.Policy.Evaluate(ctx, governance.Request{Tool: name, Arguments: args, ChatID: chatID})
		if err != nil {
			return fmt.Sprintf("Error: policy check failed: %v", err)
		}
		if !res.Allowed() {
			logger.LogPolicyDenied(chatID, turnID, name, res.Reason)
			return fmt.Sprintf("Error: denied by policy: %s", res.Reason)
		}
	}

	logger.LogToolCall(chatID, turnID, name, args)
	result, err := tool.Execute(ctx, args)
	logger.LogToolResult(chatID, turnID, name, result, err)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}

func (b *SalesAgent) remember(ctx context.Context, chatID, input, reply string) {
	if b.History == nil {
		return
	}
	if err := b.History.AddMessage(ctx, chatID, llms.ChatMessageTypeHuman, input); err != nil {
		log.Warn().Err(err).Str("chat_id", chatID).Msg("failed to save message")
		return
	}
	if err := b.History.AddMessage(ctx, chatID, llms.ChatMessageTypeAI, reply); err != nil {
		log.Warn().Err(err).Str("chat_id", chatID).Msg("failed to save reply")
	}
}

func (b *SalesAgent) logger() *observability.Logger {
	if b.Logger == nil {
		return observability.NewLogger("")
	}
	return b.Logger
}

func (b *SalesAgent) historyLimit() int {
	if b.HistoryLimit <= 0 {
		return DefaultHistoryLimit
	}
	return b.HistoryLimit
}

// logUsage reports token counts when the provider returns them.
func logUsage(logger *observability.Logger, chatID, turnID string, choice *llms.ContentChoice) {
	prompt, okP := choice.GenerationInfo["PromptTokens"].(int)
	completion, okC := choice.GenerationInfo["CompletionTokens"].(int)
	if !okP && !okC {
		return
	}
	model, _ := choice.GenerationInfo["Model"].(string)
	logger.LogCost(chatID, turnID, prompt, completion, model)
}
