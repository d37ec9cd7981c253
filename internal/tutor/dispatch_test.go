package tutor

import (
	"strings"
	"testing"
)

func TestNormalizeMCQExactOptionMatch(t *testing.T) {
	mcq, err := normalizeMCQ(MCQ{
		Question:      "q",
		Options:       []string{"Tuple", "List"},
		CorrectAnswer: "List",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mcq.CorrectAnswer != "List" {
		t.Fatalf("correct answer = %q", mcq.CorrectAnswer)
	}
}

func TestNormalizeMCQLetterAnswer(t *testing.T) {
	mcq, err := normalizeMCQ(MCQ{
		Question:      "q",
		Options:       []string{"A) Tuple", "B) String", "C) List", "D) Integer"},
		CorrectAnswer: "C",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mcq.CorrectAnswer != "C) List" {
		t.Fatalf("correct answer = %q, want C) List", mcq.CorrectAnswer)
	}
}

func TestNormalizeMCQAnswerIsAlwaysAnOption(t *testing.T) {
	mcq, err := normalizeMCQ(MCQ{
		Question:      "q",
		Options:       []string{"A) x", "B) y"},
		CorrectAnswer: "b)",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, opt := range mcq.Options {
		if opt == mcq.CorrectAnswer {
			found = true
		}
	}
	if !found {
		t.Fatalf("normalized answer %q is not a member of options %v", mcq.CorrectAnswer, mcq.Options)
	}
}

func TestNormalizeMCQRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		mcq  MCQ
	}{
		{"no question", MCQ{Options: []string{"a", "b"}, CorrectAnswer: "a"}},
		{"one option", MCQ{Question: "q", Options: []string{"a"}, CorrectAnswer: "a"}},
		{"no answer", MCQ{Question: "q", Options: []string{"a", "b"}}},
		{"answer not listed", MCQ{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: "z"}},
		{"letter out of range", MCQ{Question: "q", Options: []string{"A) x", "B) y"}, CorrectAnswer: "F"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := normalizeMCQ(tc.mcq); err == nil {
				t.Fatalf("expected error for %+v", tc.mcq)
			}
		})
	}
}

func TestFormatMCQOmitsCorrectAnswer(t *testing.T) {
	text := formatMCQ(MCQ{
		Question:      "Which type is mutable?",
		Options:       []string{"A) Tuple", "B) List"},
		CorrectAnswer: "B) List",
	})

	if !strings.Contains(text, "Which type is mutable?") {
		t.Error("question missing from presentation text")
	}
	if !strings.Contains(text, "A) Tuple") || !strings.Contains(text, "B) List") {
		t.Error("options missing from presentation text")
	}
	if strings.Contains(text, "correct") || strings.Contains(text, "Correct") {
		t.Errorf("presentation must not reveal the answer: %q", text)
	}
}

func TestDispatchFallsBackToSessionFocus(t *testing.T) {
	engine := newTestEngine(&stubDecider{}, &stubTools{}, &stubDialogue{})
	st := NewState("Recursion", "", DifficultyAdvanced)

	if got := engine.topicFor(st, ToolInput{}); got != "Recursion" {
		t.Errorf("topic fallback = %q, want session topic", got)
	}
	if got := engine.topicFor(st, ToolInput{Topic: "loops"}); got != "loops" {
		t.Errorf("explicit topic = %q, want loops", got)
	}
	if got := engine.difficultyFor(st, ToolInput{}); got != "advanced" {
		t.Errorf("difficulty fallback = %q, want advanced", got)
	}
}
