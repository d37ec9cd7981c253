// Package session owns the per-session lifecycle around the turn engine:
// creation with the initial greeting, serialization of concurrent turns,
// MCQ answer turns, persistence, and transcripts.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/socratutor/internal/logging"
	"github.com/socratutor/internal/store"
	"github.com/socratutor/internal/tutor"
)

// Greeting opens every new session as the first assistant message.
const Greeting = "Hello! I'm your Socratic programming tutor. What topic would you like to learn or practice today? Or would you like to test your knowledge with a challenge or an MCQ?"

// Session is one live tutoring conversation. Turns on a session are
// serialized by its mutex; the engine requires a single owner per state.
type Session struct {
	ID        string
	State     *tutor.State
	CreatedAt time.Time

	mu         sync.Mutex
	transcript *logging.TranscriptLogger
}

// TurnResult is what one user message produced, shaped for presentation.
type TurnResult struct {
	// Reply is the user-visible text of the turn's final message, with any
	// leading thought line stripped.
	Reply string `json:"reply"`
	// Thought is the dialogue model's internal rationale, when it shared one.
	Thought string `json:"thought,omitempty"`

	MCQActive  bool     `json:"mcq_active"`
	MCQOptions []string `json:"mcq_options,omitempty"`
}

// Manager creates, looks up, and runs sessions.
type Manager struct {
	engine *tutor.Engine
	repo   store.Repository // nil = in-memory only

	defaultTopic      string
	defaultDifficulty tutor.Difficulty
	transcriptDir     string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRepository enables persistence of sessions.
func WithRepository(repo store.Repository) ManagerOption {
	return func(m *Manager) { m.repo = repo }
}

// WithDefaults sets the topic and difficulty used when a session is created
// without explicit values.
func WithDefaults(topic string, difficulty tutor.Difficulty) ManagerOption {
	return func(m *Manager) {
		m.defaultTopic = topic
		if difficulty != "" {
			m.defaultDifficulty = difficulty
		}
	}
}

// WithTranscripts enables per-session transcript files under dir.
func WithTranscripts(dir string) ManagerOption {
	return func(m *Manager) { m.transcriptDir = dir }
}

// NewManager builds a session manager around engine.
func NewManager(engine *tutor.Engine, opts ...ManagerOption) *Manager {
	m := &Manager{
		engine:            engine,
		defaultDifficulty: tutor.DifficultyBeginner,
		sessions:          make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session: fresh state, the greeting as first message,
// persisted if a repository is configured.
func (m *Manager) Create(ctx context.Context, topic, subTopic string, difficulty tutor.Difficulty) (*Session, error) {
	if topic == "" {
		topic = m.defaultTopic
	}
	if difficulty == "" {
		difficulty = m.defaultDifficulty
	}

	sess := &Session{
		ID:        uuid.NewString(),
		State:     tutor.NewState(topic, subTopic, difficulty),
		CreatedAt: time.Now(),
	}
	sess.State.Append(tutor.Message{Role: tutor.RoleAssistant, Content: Greeting})

	if m.transcriptDir != "" {
		transcript, err := logging.StartTranscript(m.transcriptDir, sess.ID)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("Transcript disabled for session")
		} else {
			sess.transcript = transcript
			transcript.LogMessage(string(tutor.RoleAssistant), Greeting)
		}
	}

	if err := m.persist(ctx, sess); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	log.Info().Str("session_id", sess.ID).Str("topic", topic).Msg("Session created")
	return sess, nil
}

// Get returns a live session, rehydrating it from the repository when it is
// not in memory.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if m.repo == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	record, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if record == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	sess = &Session{ID: record.SessionID, State: record.State, CreatedAt: record.CreatedAt}

	m.mu.Lock()
	// Another request may have rehydrated it first; keep the winner.
	if existing, ok := m.sessions[sessionID]; ok {
		sess = existing
	} else {
		m.sessions[sessionID] = sess
	}
	m.mu.Unlock()

	return sess, nil
}

// HandleMessage runs one user message through a full turn and returns the
// presentation-ready result. Turns on the same session are serialized.
func (m *Manager) HandleMessage(ctx context.Context, sessionID, input string) (*TurnResult, error) {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	st := sess.State
	answeringMCQ := st.MCQActive

	turnInput := input
	if answeringMCQ {
		turnInput = formatMCQAnswer(st, input)
	}

	if err := m.engine.RunTurn(ctx, st, turnInput); err != nil {
		return nil, err
	}

	if answeringMCQ {
		// The outstanding question was answered this turn; feedback came
		// from the dialogue step, which saw mcq_active while running.
		st.ClearMCQ()
	}

	result := resultFromState(st)

	if sess.transcript != nil {
		sess.transcript.LogMessage(string(tutor.RoleUser), turnInput)
		sess.transcript.LogThought(result.Thought)
		sess.transcript.LogMessage("tutor", result.Reply)
	}

	if err := m.persist(ctx, sess); err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to persist session after turn")
	}

	return result, nil
}

// List returns the known sessions, persisted ones included.
func (m *Manager) List(ctx context.Context) ([]*store.SessionRecord, error) {
	if m.repo != nil {
		return m.repo.ListSessions(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]*store.SessionRecord, 0, len(m.sessions))
	for _, sess := range m.sessions {
		records = append(records, &store.SessionRecord{
			SessionID:  sess.ID,
			Topic:      sess.State.Topic,
			SubTopic:   sess.State.SubTopic,
			Difficulty: string(sess.State.DifficultyLevel),
			CreatedAt:  sess.CreatedAt,
		})
	}
	return records, nil
}

// Close ends a session: transcript closed, final state persisted, removed
// from memory.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.transcript.Close(); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to close transcript")
	}
	return m.persist(ctx, sess)
}

// CloseAll ends every live session, for shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		sess.transcript.Close()
		if err := m.persist(ctx, sess); err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to persist session on shutdown")
		}
		sess.mu.Unlock()
	}
}

func (m *Manager) persist(ctx context.Context, sess *Session) error {
	if m.repo == nil {
		return nil
	}
	record := &store.SessionRecord{
		SessionID:  sess.ID,
		Topic:      sess.State.Topic,
		SubTopic:   sess.State.SubTopic,
		Difficulty: string(sess.State.DifficultyLevel),
		State:      sess.State,
		CreatedAt:  sess.CreatedAt,
	}
	if err := m.repo.UpsertSession(ctx, record); err != nil {
		return fmt.Errorf("persist session %s: %w", sess.ID, err)
	}
	return nil
}

// formatMCQAnswer shapes the user's answer to an outstanding MCQ the way the
// dialogue model expects it: "My answer to the MCQ is: B) <option text>".
// Bare letters resolve to their option; anything else passes through as-is.
func formatMCQAnswer(st *tutor.State, input string) string {
	answer := strings.TrimSpace(input)

	letter := strings.ToUpper(strings.TrimSuffix(answer, ")"))
	if len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'Z' {
		idx := int(letter[0] - 'A')
		if idx < len(st.MCQOptions) {
			opt := st.MCQOptions[idx]
			// Options usually carry their own "B) " label already.
			if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(opt)), letter+")") {
				return fmt.Sprintf("My answer to the MCQ is: %s", strings.TrimSpace(opt))
			}
			return fmt.Sprintf("My answer to the MCQ is: %s) %s", letter, strings.TrimSpace(opt))
		}
	}

	return fmt.Sprintf("My answer to the MCQ is: %s", answer)
}

// resultFromState shapes the turn's last message for presentation.
func resultFromState(st *tutor.State) *TurnResult {
	result := &TurnResult{
		MCQActive:  st.MCQActive,
		MCQOptions: st.MCQOptions,
	}

	if msg, ok := st.LastMessage(); ok {
		result.Reply = tutor.StripThought(msg.Content)
		result.Thought = tutor.ExtractThought(msg.Content)
	}
	return result
}
