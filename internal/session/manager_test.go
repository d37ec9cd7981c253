package session

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/socratutor/internal/store"
	"github.com/socratutor/internal/tutor"
)

type scriptedDecider struct {
	decisions []tutor.Decision
	inputs    []string
}

func (d *scriptedDecider) Decide(ctx context.Context, history []tutor.Message, difficulty tutor.Difficulty, topic, subTopic string) (tutor.Decision, error) {
	if len(history) > 0 {
		d.inputs = append(d.inputs, history[len(history)-1].Content)
	}
	if len(d.decisions) == 0 {
		return tutor.Decision{Route: tutor.RouteDialogue}, nil
	}
	next := d.decisions[0]
	d.decisions = d.decisions[1:]
	return next, nil
}

type fixedTools struct{ mcq tutor.MCQ }

func (t *fixedTools) AnalyzeCode(ctx context.Context, code string) (string, error) {
	return "analysis of " + code, nil
}
func (t *fixedTools) ExplainConcept(ctx context.Context, concept string) (string, error) {
	return "explanation of " + concept, nil
}
func (t *fixedTools) GenerateChallenge(ctx context.Context, topic, difficulty string) (string, error) {
	return "challenge on " + topic, nil
}
func (t *fixedTools) GenerateMCQ(ctx context.Context, topic, difficulty string) (tutor.MCQ, error) {
	return t.mcq, nil
}

type echoDialogue struct{ reply string }

func (d *echoDialogue) NextQuestion(ctx context.Context, history []tutor.Message, state tutor.DialogueState) (string, error) {
	return d.reply, nil
}

// memoryRepo is an in-memory Repository for persistence tests.
type memoryRepo struct {
	mu      sync.Mutex
	records map[string]*store.SessionRecord
	upserts int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]*store.SessionRecord)}
}

func (r *memoryRepo) GetSession(ctx context.Context, id string) (*store.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[id], nil
}

func (r *memoryRepo) UpsertSession(ctx context.Context, record *store.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.records[record.SessionID] = record
	return nil
}

func (r *memoryRepo) ListSessions(ctx context.Context) ([]*store.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*store.SessionRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memoryRepo) DeleteSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *memoryRepo) Ping(ctx context.Context) error { return nil }
func (r *memoryRepo) Close() error                   { return nil }

func newTestManager(decider tutor.Decider, dialogue tutor.Dialogue, opts ...ManagerOption) *Manager {
	engine := tutor.NewEngine(decider, &fixedTools{mcq: tutor.MCQ{
		Question:      "Which loop repeats at least once?",
		Options:       []string{"A) for", "B) do-while", "C) while"},
		CorrectAnswer: "B",
	}}, dialogue)
	return NewManager(engine, opts...)
}

func TestCreateSessionGreeting(t *testing.T) {
	m := newTestManager(&scriptedDecider{}, &echoDialogue{reply: "What do you know already?"},
		WithDefaults("basics", tutor.DifficultyBeginner))

	sess, err := m.Create(context.Background(), "", "", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if sess.ID == "" {
		t.Error("session id not assigned")
	}
	if sess.State.Topic != "basics" || sess.State.DifficultyLevel != tutor.DifficultyBeginner {
		t.Errorf("defaults not applied: %+v", sess.State)
	}
	if len(sess.State.Messages) != 1 {
		t.Fatalf("expected greeting as sole message, got %d messages", len(sess.State.Messages))
	}
	first := sess.State.Messages[0]
	if first.Role != tutor.RoleAssistant || first.Content != Greeting {
		t.Errorf("first message is not the greeting: %+v", first)
	}
}

func TestHandleMessageDialogueTurn(t *testing.T) {
	m := newTestManager(&scriptedDecider{}, &echoDialogue{reply: "Thought: user is new.\nWhat is a variable, in your view?"})

	sess, err := m.Create(context.Background(), "basics", "", tutor.DifficultyBeginner)
	if err != nil {
		t.Fatal(err)
	}

	result, err := m.HandleMessage(context.Background(), sess.ID, "teach me variables")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	if result.Reply != "What is a variable, in your view?" {
		t.Errorf("reply = %q, thought not stripped", result.Reply)
	}
	if result.Thought != "user is new." {
		t.Errorf("thought = %q", result.Thought)
	}
	if result.MCQActive {
		t.Error("no MCQ expected on a dialogue turn")
	}
	// greeting + user + assistant
	if len(sess.State.Messages) != 3 {
		t.Errorf("message count = %d, want 3", len(sess.State.Messages))
	}
}

func TestHandleMessageMCQFlow(t *testing.T) {
	decider := &scriptedDecider{decisions: []tutor.Decision{
		{Route: tutor.RouteGenerateMCQ, CallID: "call-1"},
	}}
	m := newTestManager(decider, &echoDialogue{reply: "Correct! Why does that loop always run once?"})

	sess, err := m.Create(context.Background(), "loops", "", tutor.DifficultyBeginner)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// Turn 1: quiz requested, MCQ becomes the turn's output.
	result, err := m.HandleMessage(ctx, sess.ID, "quiz me")
	if err != nil {
		t.Fatal(err)
	}
	if !result.MCQActive {
		t.Fatal("expected an outstanding MCQ")
	}
	if !strings.Contains(result.Reply, "Which loop repeats at least once?") {
		t.Errorf("reply does not present the question: %q", result.Reply)
	}
	if strings.Contains(result.Reply, "Correct") {
		t.Errorf("reply leaks past the MCQ: %q", result.Reply)
	}
	if len(result.MCQOptions) != 3 {
		t.Errorf("options = %v", result.MCQOptions)
	}

	// Turn 2: bare letter answer is expanded and the MCQ is cleared.
	result, err = m.HandleMessage(ctx, sess.ID, "B")
	if err != nil {
		t.Fatal(err)
	}
	if result.MCQActive {
		t.Error("MCQ should be cleared after the answer turn")
	}
	if sess.State.MCQActive || sess.State.MCQQuestion != "" {
		t.Errorf("MCQ state not cleared: %+v", sess.State)
	}

	last := decider.inputs[len(decider.inputs)-1]
	if last != "My answer to the MCQ is: B) do-while" {
		t.Errorf("answer turn input = %q", last)
	}
}

func TestHandleMessagePersists(t *testing.T) {
	repo := newMemoryRepo()
	m := newTestManager(&scriptedDecider{}, &echoDialogue{reply: "And what happens next?"},
		WithRepository(repo))

	sess, err := m.Create(context.Background(), "maps", "", tutor.DifficultyBeginner)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.HandleMessage(context.Background(), sess.ID, "hello"); err != nil {
		t.Fatal(err)
	}

	record, err := repo.GetSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if record == nil {
		t.Fatal("session not persisted")
	}
	if len(record.State.Messages) != 3 {
		t.Errorf("persisted %d messages, want 3", len(record.State.Messages))
	}
}

func TestGetRehydratesFromRepository(t *testing.T) {
	repo := newMemoryRepo()
	m := newTestManager(&scriptedDecider{}, &echoDialogue{reply: "Where were we?"},
		WithRepository(repo))

	sess, err := m.Create(context.Background(), "slices", "headers", tutor.DifficultyAdvanced)
	if err != nil {
		t.Fatal(err)
	}

	// Simulate a restart: drop the in-memory copy.
	m.mu.Lock()
	delete(m.sessions, sess.ID)
	m.mu.Unlock()

	got, err := m.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get after restart failed: %v", err)
	}
	if got.State.Topic != "slices" || got.State.DifficultyLevel != tutor.DifficultyAdvanced {
		t.Errorf("rehydrated state wrong: %+v", got.State)
	}
	if len(got.State.Messages) != 1 {
		t.Errorf("rehydrated log has %d messages, want the greeting", len(got.State.Messages))
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := newTestManager(&scriptedDecider{}, &echoDialogue{reply: "?"})
	if _, err := m.Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestFormatMCQAnswer(t *testing.T) {
	st := tutor.NewState("", "", tutor.DifficultyBeginner)
	st.MCQOptions = []string{"A) Tuple", "B) String", "C) List"}

	cases := []struct {
		input string
		want  string
	}{
		{"C", "My answer to the MCQ is: C) List"},
		{"b)", "My answer to the MCQ is: B) String"},
		{"C) List", "My answer to the MCQ is: C) List"},
		{"I think it is the list", "My answer to the MCQ is: I think it is the list"},
		{"Z", "My answer to the MCQ is: Z"},
	}

	for _, tc := range cases {
		if got := formatMCQAnswer(st, tc.input); got != tc.want {
			t.Errorf("formatMCQAnswer(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
