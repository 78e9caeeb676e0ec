// Package repository persists conversations to SQLite as an append-only log.
// The log is for export and audit; it is never authoritative for live
// routing decisions, which always come from the in-memory session registry.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/carebridge/triage-assistant/internal/domain"
)

// ConversationLog is the SQLite-backed append-only log.
type ConversationLog struct {
	db *sql.DB
}

// NewConversationLog opens (and migrates) the log database.
func NewConversationLog(dsn string) (*ConversationLog, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	l := &ConversationLog{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return l, nil
}

func (l *ConversationLog) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			metadata TEXT,
			FOREIGN KEY (session_id) REFERENCES conversations(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS assessments (
			assessment_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			care_level TEXT NOT NULL,
			urgency TEXT NOT NULL,
			symptoms TEXT,
			red_flags TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES conversations(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_session ON assessments(session_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := l.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (l *ConversationLog) Close() error {
	return l.db.Close()
}

// LogSession records a new conversation session. Re-logging an existing
// session is ignored so the caller can log idempotently per turn.
func (l *ConversationLog) LogSession(ctx context.Context, sessionID, userID string, createdAt time.Time) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO conversations (session_id, user_id, created_at) VALUES (?, ?, ?)`,
		sessionID, userID, createdAt)
	return err
}

// LogMessage appends one message to the log.
func (l *ConversationLog) LogMessage(ctx context.Context, sessionID string, msg domain.Message) error {
	var metadata string
	if msg.Metadata != nil {
		raw, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadata = string(raw)
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, sender, content, created_at, metadata) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.MessageID, sessionID, string(msg.Sender), msg.Content, msg.Timestamp, metadata)
	return err
}

// LogAssessment appends one triage assessment to the log.
func (l *ConversationLog) LogAssessment(ctx context.Context, sessionID string, a domain.Assessment, at time.Time) error {
	symptoms, err := json.Marshal(a.SymptomsDetected)
	if err != nil {
		return fmt.Errorf("failed to encode symptoms: %w", err)
	}
	redFlags, err := json.Marshal(a.RedFlags)
	if err != nil {
		return fmt.Errorf("failed to encode red flags: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO assessments (assessment_id, session_id, care_level, urgency, symptoms, red_flags, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), sessionID, string(a.CareLevel), string(a.Urgency), string(symptoms), string(redFlags), at)
	return err
}

// GetMessages returns the logged messages for a session in append order, up
// to limit when limit is positive.
func (l *ConversationLog) GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT message_id, sender, content, created_at, metadata FROM messages WHERE session_id = ? ORDER BY created_at ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := l.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var sender string
		var metadata sql.NullString
		if err := rows.Scan(&msg.MessageID, &sender, &msg.Content, &msg.Timestamp, &metadata); err != nil {
			return nil, err
		}
		msg.Sender = domain.Sender(sender)
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &msg.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// GetUserSessions returns session IDs logged for a user, newest first.
func (l *ConversationLog) GetUserSessions(ctx context.Context, userID string, limit int) ([]string, error) {
	query := `SELECT session_id FROM conversations WHERE user_id = ? ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := l.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}
