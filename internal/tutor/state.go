package tutor

import "fmt"

// Role identifies who produced a message in the conversation log.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool-result"
)

// Message is one turn unit in the conversation log. Messages are immutable
// once created and only ever appended, never edited or reordered.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// CallID is set on tool-result messages and correlates them to the
	// routing decision that requested the tool run.
	CallID string `json:"call_id,omitempty"`
	// ToolName is set on tool-result messages to the name of the tool
	// that produced them.
	ToolName string `json:"tool_name,omitempty"`
}

// Difficulty is the current question difficulty for the session.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Route is one of the fixed outcomes the routing decision step may select
// for a turn. Using a closed enum (rather than free-form tool name strings)
// keeps dispatch exhaustive at compile time.
type Route int

const (
	// RouteDialogue resumes Socratic questioning directly. Default route
	// and the fallback for every malformed decision.
	RouteDialogue Route = iota
	RouteAnalyzeCode
	RouteExplainConcept
	RouteGenerateChallenge
	RouteGenerateMCQ
)

// routeNames are the wire names of the routes, matching the tool names the
// decision model selects between.
var routeNames = map[Route]string{
	RouteDialogue:          "continue_dialogue",
	RouteAnalyzeCode:       "analyze_code",
	RouteExplainConcept:    "explain_concept",
	RouteGenerateChallenge: "generate_challenge",
	RouteGenerateMCQ:       "generate_mcq",
}

func (r Route) String() string {
	if name, ok := routeNames[r]; ok {
		return name
	}
	return fmt.Sprintf("route(%d)", int(r))
}

// ParseRoute maps a wire/tool name back to a Route. The second return is
// false for unrecognized names.
func ParseRoute(name string) (Route, bool) {
	for route, n := range routeNames {
		if n == name {
			return route, true
		}
	}
	return RouteDialogue, false
}

// Routes lists every valid route, in dispatch order.
func Routes() []Route {
	return []Route{
		RouteDialogue,
		RouteAnalyzeCode,
		RouteExplainConcept,
		RouteGenerateChallenge,
		RouteGenerateMCQ,
	}
}

// ToolInput is the argument payload attached to a routing decision. Which
// fields are populated depends on the chosen route; it is empty for
// RouteDialogue.
type ToolInput struct {
	Code       string `json:"code,omitempty"`
	Concept    string `json:"concept,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Decision is the outcome of one routing decision step: exactly one route
// plus its payload. CallID correlates any tool-result message produced for
// this decision back to it.
type Decision struct {
	Route  Route
	Input  ToolInput
	CallID string
}

// MCQ is the structured output of the multiple-choice question generator.
type MCQ struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// State is the single mutable record threaded through every step of a turn.
// It is owned by exactly one running turn at a time; cross-turn concurrency
// is serialized by the session manager.
type State struct {
	Messages          []Message  `json:"messages"`
	DifficultyLevel   Difficulty `json:"difficulty_level"`
	UserStruggleCount int        `json:"user_struggle_count"`
	Topic             string     `json:"topic"`
	SubTopic          string     `json:"sub_topic"`

	MCQActive        bool     `json:"mcq_active"`
	MCQQuestion      string   `json:"mcq_question,omitempty"`
	MCQOptions       []string `json:"mcq_options,omitempty"`
	MCQCorrectAnswer string   `json:"mcq_correct_answer,omitempty"`

	// AgentThought is the last internal rationale articulated by the
	// dialogue model. Informational only, never read by control flow.
	AgentThought string `json:"agent_thought,omitempty"`

	// NextNode and ToolInput hold the most recent routing decision. They
	// are valid only until the transition graph consumes them for the
	// current turn.
	NextNode  Route     `json:"next_node"`
	ToolInput ToolInput `json:"tool_input"`
}

// NewState creates the per-session state with an empty message log and the
// given starting focus.
func NewState(topic, subTopic string, difficulty Difficulty) *State {
	if difficulty == "" {
		difficulty = DifficultyBeginner
	}
	return &State{
		Messages:        []Message{},
		DifficultyLevel: difficulty,
		Topic:           topic,
		SubTopic:        subTopic,
	}
}

// Append adds a message to the log. The log is append-only; indices of
// existing messages are stable for the lifetime of the session.
func (s *State) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// LastMessage returns the most recent message, or a zero Message and false
// when the log is empty.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// ClearMCQ resets the MCQ fields after an outstanding question has been
// answered.
func (s *State) ClearMCQ() {
	s.MCQActive = false
	s.MCQQuestion = ""
	s.MCQOptions = nil
	s.MCQCorrectAnswer = ""
}
