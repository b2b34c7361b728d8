package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	"github.com/tmc/langchaingo/llms"
)

// HistoryStore keeps sales conversations per chat in SQLite.
type HistoryStore struct {
	DB *sql.DB
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	queries := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages (chat_id, id);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating history schema: %w", err)
		}
	}

	return &HistoryStore{DB: db}, nil
}

func (h *HistoryStore) AddMessage(ctx context.Context, chatID string, role llms.ChatMessageType, content string) error {
	query := `INSERT INTO messages (chat_id, role, content) VALUES (?, ?, ?)`
	_, err := h.DB.ExecContext(ctx, query, chatID, string(role), content)
	return err
}

// GetHistory returns the last limit messages of chatID, oldest first.
func (h *HistoryStore) GetHistory(ctx context.Context, chatID string, limit int) ([]llms.MessageContent, error) {
	query := `SELECT role, content FROM messages WHERE chat_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := h.DB.QueryContext(ctx, query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []llms.MessageContent
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}
		history = append(history, llms.TextParts(parseRole(role), content))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	return history, nil
}

func (h *HistoryStore) ClearHistory(ctx context.Context, chatID string) error {
	_, err := h.DB.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, chatID)
	return err
}

func (h *HistoryStore) Close() error {
	return h.DB.Close()
}

func parseRole(role string) llms.ChatMessageType {
	switch llms.ChatMessageType(role) {
	case llms.ChatMessageTypeAI:
		return llms.ChatMessageTypeAI
	case llms.ChatMessageTypeSystem:
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeHuman
	}
}
