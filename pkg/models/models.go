// Package models holds the wire types shared by the HTTP API and clients.
package models

import "time"

// ChatMessage is one conversation log entry as exposed over the API.
type ChatMessage struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	CallID   string `json:"call_id,omitempty"`
	ToolName string `json:"tool_name,omitempty"`
}

// CreateSessionRequest starts a new tutoring session.
type CreateSessionRequest struct {
	Topic      string `json:"topic,omitempty"`
	SubTopic   string `json:"sub_topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// SessionResponse is the full view of one session.
type SessionResponse struct {
	SessionID         string        `json:"session_id"`
	Topic             string        `json:"topic"`
	SubTopic          string        `json:"sub_topic"`
	Difficulty        string        `json:"difficulty"`
	UserStruggleCount int           `json:"user_struggle_count"`
	MCQActive         bool          `json:"mcq_active"`
	MCQOptions        []string      `json:"mcq_options,omitempty"`
	Messages          []ChatMessage `json:"messages"`
	CreatedAt         time.Time     `json:"created_at"`
}

// SessionSummary is the listing view of a session, without the message log.
type SessionSummary struct {
	SessionID  string    `json:"session_id"`
	Topic      string    `json:"topic"`
	SubTopic   string    `json:"sub_topic"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MessageRequest posts one user message to a session.
type MessageRequest struct {
	Content string `json:"content"`
}

// TurnResponse is the outcome of one posted message.
type TurnResponse struct {
	Reply      string   `json:"reply"`
	Thought    string   `json:"thought,omitempty"`
	MCQActive  bool     `json:"mcq_active"`
	MCQOptions []string `json:"mcq_options,omitempty"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
