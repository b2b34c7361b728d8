package observability

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Setup points the global zerolog logger at stderr: human readable on a
// terminal, JSON lines otherwise.
func Setup(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stderr.Fd())) {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeReasoning   EventType = "reasoning"
	EventTypeToolCall    EventType = "tool_call"
	EventTypeToolResult  EventType = "tool_result"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeCost        EventType = "cost"
	EventTypeLLM         EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	ChatID    string    `json:"chat_id,omitempty"`
	TurnID    string    `json:"turn_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger records agent events. LLM exchanges are also appended to a JSONL
// transcript when a path is set.
type Logger struct {
	zl         zerolog.Logger
	llmLogPath string
	maxSize    int64
}

// NewLogger logs through the global zerolog logger. An empty llmLogPath
// disables the transcript file.
func NewLogger(llmLogPath string) *Logger {
	return &Logger{
		zl:         log.Logger,
		llmLogPath: llmLogPath,
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// WithWriter sends events to w instead of the global logger.
func (l *Logger) WithWriter(w io.Writer) *Logger {
	cp := *l
	cp.zl = zerolog.New(w).With().Timestamp().Logger()
	return &cp
}

func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	e := l.zl.Debug()
	if evt.Type == EventTypePolicyCheck {
		e = l.zl.Warn()
	}
	e.Str("event", string(evt.Type)).
		Str("chat_id", evt.ChatID).
		Str("turn_id", evt.TurnID).
		Interface("data", evt.Data).
		Msg("agent event")

	if evt.Type == EventTypeLLM && l.llmLogPath != "" {
		data, err := json.Marshal(evt)
		if err != nil {
			l.zl.Error().Err(err).Msg("failed to marshal llm event")
			return
		}
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0o755); err != nil {
		l.zl.Error().Err(err).Msg("failed to create log directory")
		return
	}

	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.zl.Error().Err(err).Msg("failed to open llm log")
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		l.zl.Error().Err(err).Msg("failed to write llm log")
	}
}

// rotateLogs keeps one .old file.
func (l *Logger) rotateLogs() {
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

func (l *Logger) LogReasoning(chatID, turnID, content string) {
	l.Log(Event{
		Type:   EventTypeReasoning,
		ChatID: chatID,
		TurnID: turnID,
		Data:   map[string]string{"content": content},
	})
}

func (l *Logger) LogToolCall(chatID, turnID, tool, args string) {
	l.Log(Event{
		Type:   EventTypeToolCall,
		ChatID: chatID,
		TurnID: turnID,
		Data: map[string]string{
			"tool": tool,
			"args": args,
		},
	})
}

func (l *Logger) LogToolResult(chatID, turnID, tool, result string, err error) {
	data := map[string]string{"tool": tool, "result": result}
	if err != nil {
		data["error"] = err.Error()
	}
	l.Log(Event{Type: EventTypeToolResult, ChatID: chatID, TurnID: turnID, Data: data})
}

func (l *Logger) LogPolicyDenied(chatID, turnID, tool, reason string) {
	l.Log(Event{
		Type:   EventTypePolicyCheck,
		ChatID: chatID,
		TurnID: turnID,
		Data:   map[string]string{"tool": tool, "reason": reason},
	})
}

func (l *Logger) LogCost(chatID, turnID string, promptTokens, completionTokens int, model string) {
	l.Log(Event{
		Type:   EventTypeCost,
		ChatID: chatID,
		TurnID: turnID,
		Data: map[string]any{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"total_tokens":      promptTokens + completionTokens,
			"model":             model,
		},
	})
}

func (l *Logger) LogLLM(chatID, turnID string, prompt any, response string, toolCalls any) {
	l.Log(Event{
		Type:   EventTypeLLM,
		ChatID: chatID,
		TurnID: turnID,
		Data: map[string]any{
			"prompt":     prompt,
			"response":   response,
			"tool_calls": toolCalls,
		},
	})
}
