package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// dispatch executes the handler bound to the decided route and folds its
// output into the message log as a tool-result message. Handler failures
// never escape this function: they are substituted with an explanatory
// tool-result carrying the same call id, so the dialogue step still has a
// coherent message to reason over.
func (e *Engine) dispatch(ctx context.Context, st *State, decision Decision) {
	var (
		output string
		err    error
	)

	switch decision.Route {
	case RouteAnalyzeCode:
		output, err = e.tools.AnalyzeCode(ctx, decision.Input.Code)
	case RouteExplainConcept:
		output, err = e.tools.ExplainConcept(ctx, decision.Input.Concept)
	case RouteGenerateChallenge:
		output, err = e.tools.GenerateChallenge(ctx, e.topicFor(st, decision.Input), e.difficultyFor(st, decision.Input))
	case RouteGenerateMCQ:
		e.dispatchMCQ(ctx, st, decision)
		return
	default:
		// The router already defends against unknown routes, but dispatch
		// must not crash if one slips through regardless.
		log.Error().Str("route", decision.Route.String()).Msg("Dispatch reached with unknown route")
		st.Append(Message{
			Role:     RoleToolResult,
			Content:  fmt.Sprintf("Error: tool %q not found.", decision.Route.String()),
			CallID:   decision.CallID,
			ToolName: decision.Route.String(),
		})
		return
	}

	if err != nil {
		log.Warn().Err(err).Str("tool", decision.Route.String()).Msg("Tool execution failed")
		output = fmt.Sprintf("Error executing tool %s: %v", decision.Route.String(), err)
	}

	st.Append(Message{
		Role:     RoleToolResult,
		Content:  output,
		CallID:   decision.CallID,
		ToolName: decision.Route.String(),
	})
}

// dispatchMCQ runs the MCQ generator. It is the one handler with a side
// effect beyond appending a message: on success it marks an MCQ as
// outstanding and records question, options, and correct answer on state.
// A malformed MCQ payload leaves MCQActive false and appends an error
// tool-result instead.
func (e *Engine) dispatchMCQ(ctx context.Context, st *State, decision Decision) {
	mcq, err := e.tools.GenerateMCQ(ctx, e.topicFor(st, decision.Input), e.difficultyFor(st, decision.Input))
	if err == nil {
		mcq, err = normalizeMCQ(mcq)
	}
	if err != nil {
		log.Warn().Err(err).Msg("MCQ generation failed")
		st.Append(Message{
			Role:     RoleToolResult,
			Content:  fmt.Sprintf("Error executing tool %s: %v", RouteGenerateMCQ.String(), err),
			CallID:   decision.CallID,
			ToolName: RouteGenerateMCQ.String(),
		})
		return
	}

	st.MCQActive = true
	st.MCQQuestion = mcq.Question
	st.MCQOptions = mcq.Options
	st.MCQCorrectAnswer = mcq.CorrectAnswer

	st.Append(Message{
		Role:     RoleToolResult,
		Content:  formatMCQ(mcq),
		CallID:   decision.CallID,
		ToolName: RouteGenerateMCQ.String(),
	})
}

// normalizeMCQ validates the generated question and resolves the correct
// answer to a member of the option list. Models frequently answer with a
// bare letter ("C") while the options read "C) List"; both forms are
// accepted, anything else is a malformed payload.
func normalizeMCQ(mcq MCQ) (MCQ, error) {
	if strings.TrimSpace(mcq.Question) == "" {
		return mcq, fmt.Errorf("mcq payload has no question")
	}
	if len(mcq.Options) < 2 {
		return mcq, fmt.Errorf("mcq payload has %d options, need at least 2", len(mcq.Options))
	}

	answer := strings.TrimSpace(mcq.CorrectAnswer)
	if answer == "" {
		return mcq, fmt.Errorf("mcq payload has no correct answer")
	}

	for _, opt := range mcq.Options {
		if strings.EqualFold(strings.TrimSpace(opt), answer) {
			mcq.CorrectAnswer = opt
			return mcq, nil
		}
	}

	// Letter answers: "B" or "B)" resolve by position against the option
	// list (A is index 0).
	letter := strings.ToUpper(strings.TrimSuffix(answer, ")"))
	if len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'Z' {
		idx := int(letter[0] - 'A')
		if idx < len(mcq.Options) {
			mcq.CorrectAnswer = mcq.Options[idx]
			return mcq, nil
		}
	}

	// Last resort: an option whose label prefix matches the letter, e.g.
	// answer "C" against option "C) List".
	for _, opt := range mcq.Options {
		trimmed := strings.TrimSpace(opt)
		if strings.HasPrefix(strings.ToUpper(trimmed), letter+")") {
			mcq.CorrectAnswer = opt
			return mcq, nil
		}
	}

	return mcq, fmt.Errorf("correct answer %q is not among the listed options", mcq.CorrectAnswer)
}

// formatMCQ renders the question and options as the tool-result text shown
// to the presentation layer. The correct answer is never part of it.
func formatMCQ(mcq MCQ) string {
	var b strings.Builder
	b.WriteString(mcq.Question)
	for _, opt := range mcq.Options {
		b.WriteString("\n")
		b.WriteString(opt)
	}
	return b.String()
}

func (e *Engine) topicFor(st *State, input ToolInput) string {
	if input.Topic != "" {
		return input.Topic
	}
	return st.Topic
}

func (e *Engine) difficultyFor(st *State, input ToolInput) string {
	if input.Difficulty != "" {
		return input.Difficulty
	}
	return string(st.DifficultyLevel)
}
