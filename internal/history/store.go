// Package history is the append-only log of generated topics.
//
// The table is an external audit trail: this program writes one row per
// successful generation and never reads it back.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"topicbot/pkg/logx"
)

//go:embed schema.sql
var schemaFS embed.FS

type Store struct {
	db  *sql.DB
	log logx.Logger
}

func Open(path string, log logx.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history: db path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA busy_timeout = 5000")
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	return &Store{db: db, log: log}, nil
}

// EnsureSchema creates the topics table when absent. Safe to call every run.
func (s *Store) EnsureSchema(ctx context.Context) error {
	b, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, string(b)); err != nil {
		return fmt.Errorf("history: ensure schema: %w", err)
	}
	return nil
}

// Append inserts one row with the current UTC timestamp. The insert is
// committed when Append returns.
func (s *Store) Append(ctx context.Context, content string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topics(created_utc, content) VALUES(?, ?)`,
		now, content,
	)
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	s.log.Debug("topic logged", logx.Int("chars", len(content)))
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
