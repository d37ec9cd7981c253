package tutor

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Engine executes the per-turn state machine:
//
//	decide -> {analyze_code, explain_concept, generate_challenge} -> dialogue -> terminal
//	decide -> generate_mcq -> terminal
//	decide -> dialogue -> terminal
//
// Every non-MCQ handler result is folded into a follow-up guiding message.
// The MCQ presentation is itself the turn's final output, so that route
// skips the dialogue step. Terminal means the turn is over and the session
// waits for the next user message, which restarts the machine at decide.
//
// Steps run strictly sequentially on the caller's goroutine; an Engine never
// spawns concurrency of its own. The State passed to RunTurn must not be
// touched by anyone else until RunTurn returns.
type Engine struct {
	decider  Decider
	tools    ToolSet
	dialogue Dialogue
	window   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryWindow overrides the number of recent messages shown to the
// decision and dialogue capabilities.
func WithHistoryWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.window = n
		}
	}
}

// NewEngine wires the three capabilities into a turn engine.
func NewEngine(decider Decider, tools ToolSet, dialogue Dialogue, opts ...Option) *Engine {
	e := &Engine{
		decider:  decider,
		tools:    tools,
		dialogue: dialogue,
		window:   DefaultHistoryWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunTurn processes one user message through the full turn cycle and
// returns when the turn reaches terminal. Nothing inside a turn is fatal:
// decision malformation, handler failures, and dialogue failures all
// degrade to substituted messages, so the returned error is non-nil only
// when the context is cancelled before the turn can finish.
func (e *Engine) RunTurn(ctx context.Context, st *State, userInput string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st.Append(Message{Role: RoleUser, Content: userInput})

	decision := e.decideRoute(ctx, st)

	switch decision.Route {
	case RouteDialogue:
		e.runDialogue(ctx, st)

	case RouteGenerateMCQ:
		// MCQ goes straight to terminal: the question is already the
		// thing presented to the user.
		e.dispatchMCQ(ctx, st, decision)

	default:
		e.dispatch(ctx, st, decision)
		e.runDialogue(ctx, st)
	}

	log.Debug().
		Int("messages", len(st.Messages)).
		Str("route", decision.Route.String()).
		Bool("mcq_active", st.MCQActive).
		Msg("Turn completed")

	return ctx.Err()
}
