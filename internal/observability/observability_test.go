package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesEvents(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := NewLogger("").WithWriter(&buf)

	l.LogToolCall("42", "turn-1", "ProductSearch", `{"query":"price"}`)
	l.LogToolResult("42", "turn-1", "ProductSearch", "", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "tool_call", first["event"])
	assert.Equal(t, "42", first["chat_id"])
	assert.Equal(t, "ProductSearch", first["data"].(map[string]any)["tool"])

	assert.Contains(t, lines[1], `"error":"boom"`)
}

func TestLoggerLLMTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "llm.jsonl")
	var buf bytes.Buffer
	l := NewLogger(path).WithWriter(&buf)

	l.LogLLM("42", "turn-1", "what beds?", "we sell three", nil)
	l.LogReasoning("42", "turn-1", "not written to the transcript")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &evt))
	assert.Equal(t, EventTypeLLM, evt.Type)
	assert.False(t, evt.Timestamp.IsZero())
}

func TestLoggerRotatesTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.jsonl")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 64), 0o644))

	l := NewLogger(path).WithWriter(&bytes.Buffer{})
	l.maxSize = 10
	l.LogLLM("", "", "p", "r", nil)

	old, err := os.ReadFile(path + ".old")
	require.NoError(t, err)
	assert.Len(t, old, 64)

	fresh, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(fresh), `"type":"llm"`)
}

func TestStatus(t *testing.T) {
	SetKnowledgeBase("text", "catalog.txt")
	before := GetStatus().Requests
	RecordRequest()

	st := GetStatus()
	assert.Equal(t, "text", st.KnowledgeBase)
	assert.Equal(t, "catalog.txt", st.Source)
	assert.Equal(t, before+1, st.Requests)
	assert.False(t, st.LastActivity.IsZero())
}

func TestPrintBannerPlain(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, Status{KnowledgeBase: "sql", Source: "postgres"})

	out := buf.String()
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "knowledge base: sql (postgres)")
}
