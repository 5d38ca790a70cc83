// Package feedback persists thumbs up/down records for answered questions.
package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// Log is an append-only feedback store backed by SQLite. The core never
// reads it back; Recent exists for operators.
type Log struct {
	db *sql.DB
}

// Open opens or creates the feedback database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func Open(dbPath string) (*Log, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		rating TEXT NOT NULL CHECK (rating IN ('up', 'down')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Record appends one feedback entry.
func (l *Log) Record(ctx context.Context, input *models.FeedbackInput) (*models.Feedback, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	fb := &models.Feedback{
		ID:        uuid.New().String(),
		Question:  input.Question,
		Answer:    input.Answer,
		Rating:    input.Rating,
		CreatedAt: time.Now().UTC(),
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO feedback (id, question, answer, rating, created_at) VALUES (?, ?, ?, ?, ?)`,
		fb.ID, fb.Question, fb.Answer, fb.Rating, fb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}
	return fb, nil
}

// Count returns the total number of feedback entries.
func (l *Log) Count(ctx context.Context) (int, error) {
	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]models.Feedback, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, question, answer, rating, created_at FROM feedback ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var entries []models.Feedback
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.Question, &fb.Answer, &fb.Rating, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		entries = append(entries, fb)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (l *Log) Close() error {
	return l.db.Close()
}
