// Package store provides persistence for tutoring sessions.
package store

import (
	"context"
	"time"

	"github.com/socratutor/internal/tutor"
)

// SessionRecord is one persisted tutoring session: scalar columns for
// listing plus the full conversation state.
type SessionRecord struct {
	SessionID  string       `json:"session_id"`
	Topic      string       `json:"topic"`
	SubTopic   string       `json:"sub_topic"`
	Difficulty string       `json:"difficulty"`
	State      *tutor.State `json:"state"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Repository defines the interface for persisting session data.
type Repository interface {
	// GetSession retrieves a session by id, or nil when absent.
	GetSession(ctx context.Context, sessionID string) (*SessionRecord, error)

	// UpsertSession creates or updates a session record.
	UpsertSession(ctx context.Context, record *SessionRecord) error

	// ListSessions returns all sessions, newest first, without message logs.
	ListSessions(ctx context.Context) ([]*SessionRecord, error)

	// DeleteSession removes a session.
	DeleteSession(ctx context.Context, sessionID string) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}
