// Package sqlengine provides langchaingo sqldatabase engines that the
// product knowledge base runs generated SQL through.
package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	"github.com/tmc/langchaingo/tools/sqldatabase"
)

// SQLite is a sqldatabase.Engine backed by the pure Go sqlite driver.
type SQLite struct {
	db *sql.DB
}

var _ sqldatabase.Engine = (*SQLite)(nil)

// NewSQLite opens the database at dsn (a file path or file: URI).
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dsn, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite %s: %w", dsn, err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Dialect() string {
	return "sqlite"
}

func (s *SQLite) Query(ctx context.Context, query string, args ...any) ([]string, [][]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var results [][]string
	for rows.Next() {
		raw := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range raw {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		results = append(results, row)
	}
	return cols, results, rows.Err()
}

func (s *SQLite) TableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableInfo returns the CREATE statement for table. Sample rows are appended
// by sqldatabase.SQLDatabase itself.
func (s *SQLite) TableInfo(ctx context.Context, table string) (string, error) {
	var ddl string
	err := s.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&ddl)
	if err != nil {
		return "", fmt.Errorf("table %s: %w", table, err)
	}
	return strings.TrimSpace(ddl), nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
