// Package progress persists which course topics each user has touched, so
// /status can report learning progress across restarts.
package progress

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS completed_topics (
	user_id      INTEGER NOT NULL,
	topic_id     TEXT    NOT NULL,
	completed_at TEXT    NOT NULL,
	PRIMARY KEY (user_id, topic_id)
);
`

type Store struct {
	db *sql.DB
}

// ResolveDBPath picks the database location. Precedence: explicit path, an
// existing ./ml_tutor.sqlite, then ~/.ml-tutor-bot/ml_tutor.sqlite (created
// as needed).
func ResolveDBPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		return path, nil
	}

	localDB := filepath.Clean("./ml_tutor.sqlite")
	if _, err := os.Stat(localDB); err == nil {
		return localDB, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	homeDir := filepath.Join(home, ".ml-tutor-bot")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(homeDir, "ml_tutor.sqlite"), nil
}

func Open(path string) (*Store, error) {
	resolved, err := ResolveDBPath(path)
	if err != nil {
		return nil, fmt.Errorf("progress: resolve db path: %w", err)
	}
	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("progress: open database: %w", err)
	}
	// modernc.org/sqlite serializes access through a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("progress: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// MarkCompleted records a topic for the user. Recording the same topic twice
// is a no-op.
func (s *Store) MarkCompleted(ctx context.Context, userID int64, topicID string) error {
	topicID = strings.TrimSpace(topicID)
	if topicID == "" {
		return fmt.Errorf("progress: empty topic id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO completed_topics (user_id, topic_id, completed_at) VALUES (?, ?, ?)`,
		userID, topicID, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Completed returns the user's topics in completion order.
func (s *Store) Completed(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic_id FROM completed_topics WHERE user_id = ? ORDER BY completed_at, topic_id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		topics = append(topics, id)
	}
	return topics, rows.Err()
}

func (s *Store) CompletedCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completed_topics WHERE user_id = ?`, userID,
	).Scan(&n)
	return n, err
}

// Observe applies the keyword rules to a question and records every detected
// topic for the user.
func (s *Store) Observe(ctx context.Context, userID int64, question string) error {
	for _, topicID := range DetectTopics(question) {
		if err := s.MarkCompleted(ctx, userID, topicID); err != nil {
			return err
		}
	}
	return nil
}
