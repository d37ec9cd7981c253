package tutor

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// dialogueFallback is appended when the dialogue capability itself fails.
// The turn must still close with an assistant message.
const dialogueFallback = "I lost my train of thought for a moment. Could you tell me again, in your own words, what you're working on?"

// runDialogue produces the turn's final guiding message. It calls the
// dialogue capability with recent history plus scalar state and appends the
// result as an assistant message. The dialogue step has no other side
// effects; MCQ and topic fields are mutated elsewhere.
func (e *Engine) runDialogue(ctx context.Context, st *State) {
	history := Window(st.Messages, e.window)

	reply, err := e.dialogue.NextQuestion(ctx, history, DialogueState{
		DifficultyLevel:   st.DifficultyLevel,
		Topic:             st.Topic,
		SubTopic:          st.SubTopic,
		UserStruggleCount: st.UserStruggleCount,
		MCQActive:         st.MCQActive,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Dialogue generation failed, using fallback message")
		reply = dialogueFallback
	}

	if thought := ExtractThought(reply); thought != "" {
		st.AgentThought = thought
	}

	st.Append(Message{Role: RoleAssistant, Content: reply})
}

// ExtractThought pulls the internal rationale out of a reply that begins
// with a "Thought:" line. Returns "" when the reply carries no thought.
func ExtractThought(reply string) string {
	if !strings.HasPrefix(reply, "Thought:") {
		return ""
	}
	rest := strings.TrimSpace(strings.TrimPrefix(reply, "Thought:"))
	if idx := strings.Index(rest, "\n"); idx != -1 {
		rest = rest[:idx]
	}
	return strings.TrimSpace(rest)
}

// StripThought removes a leading "Thought:" line from a reply so the
// rationale is logged but never shown to the user. When the whole reply is
// the thought, the visible content is empty.
func StripThought(reply string) string {
	if !strings.HasPrefix(reply, "Thought:") {
		return reply
	}
	if idx := strings.Index(reply, "\n"); idx != -1 {
		return strings.TrimSpace(reply[idx+1:])
	}
	return ""
}
