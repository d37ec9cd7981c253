package tutor

import "context"

// Decider is the external routing capability. Given recent history and the
// current session focus it must select exactly one route with its payload.
// A returned error, or a Decision the engine cannot make sense of, is
// treated as a malformed decision and degrades to RouteDialogue.
type Decider interface {
	Decide(ctx context.Context, history []Message, difficulty Difficulty, topic, subTopic string) (Decision, error)
}

// ToolSet bundles the content-generation capabilities behind the non-default
// routes. Implementations call out to a model; errors are recovered by the
// dispatcher, never propagated past it.
type ToolSet interface {
	AnalyzeCode(ctx context.Context, code string) (string, error)
	ExplainConcept(ctx context.Context, concept string) (string, error)
	GenerateChallenge(ctx context.Context, topic, difficulty string) (string, error)
	GenerateMCQ(ctx context.Context, topic, difficulty string) (MCQ, error)
}

// DialogueState is the scalar state the dialogue capability sees alongside
// recent history.
type DialogueState struct {
	DifficultyLevel   Difficulty
	Topic             string
	SubTopic          string
	UserStruggleCount int
	MCQActive         bool
}

// Dialogue is the external dialogue-generation capability producing the next
// guiding message.
type Dialogue interface {
	NextQuestion(ctx context.Context, history []Message, state DialogueState) (string, error)
}
