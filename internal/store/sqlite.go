package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/socratutor/internal/tutor"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes session writes to avoid SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		topic TEXT NOT NULL DEFAULT '',
		sub_topic TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT 'beginner',
		state_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves a session by id, or nil when absent.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	query := `
		SELECT session_id, topic, sub_topic, difficulty, state_json, created_at, updated_at
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var record SessionRecord
	var stateJSON string
	var createdAt, updatedAt int64

	err := row.Scan(
		&record.SessionID, &record.Topic, &record.SubTopic, &record.Difficulty,
		&stateJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	var state tutor.State
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}

	record.State = &state
	record.CreatedAt = time.Unix(createdAt, 0)
	record.UpdatedAt = time.Unix(updatedAt, 0)

	return &record, nil
}

// UpsertSession creates or updates a session record.
func (s *SQLiteStore) UpsertSession(ctx context.Context, record *SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stateJSON, err := json.Marshal(record.State)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
	INSERT INTO sessions (session_id, topic, sub_topic, difficulty, state_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		topic = excluded.topic,
		sub_topic = excluded.sub_topic,
		difficulty = excluded.difficulty,
		state_json = excluded.state_json,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		record.SessionID, record.Topic, record.SubTopic, record.Difficulty,
		string(stateJSON), createdAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// ListSessions returns all sessions, newest first, without message logs.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]*SessionRecord, error) {
	query := `
		SELECT session_id, topic, sub_topic, difficulty, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close session rows")
		}
	}()

	var records []*SessionRecord
	for rows.Next() {
		var record SessionRecord
		var createdAt, updatedAt int64

		if err := rows.Scan(
			&record.SessionID, &record.Topic, &record.SubTopic, &record.Difficulty,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}

		record.CreatedAt = time.Unix(createdAt, 0)
		record.UpdatedAt = time.Unix(updatedAt, 0)
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return records, nil
}

// DeleteSession removes a session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
