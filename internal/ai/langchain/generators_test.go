package langchain

import (
	"context"
	"strings"
	"testing"

	"github.com/socratutor/internal/llm"
	"github.com/socratutor/internal/tutor"
)

func TestGenerateMCQParsesStrictJSON(t *testing.T) {
	model := &fakeModel{resp: textResponse(`{"question": "Which loop repeats at least once?", "options": ["A) for", "B) do-while", "C) while", "D) range"], "correct_answer": "B"}`)}
	gen := NewGenerators(llm.NewClient(model))

	mcq, err := gen.GenerateMCQ(context.Background(), "loops", "beginner")
	if err != nil {
		t.Fatalf("GenerateMCQ failed: %v", err)
	}

	if mcq.Question != "Which loop repeats at least once?" {
		t.Errorf("question = %q", mcq.Question)
	}
	if len(mcq.Options) != 4 {
		t.Errorf("options = %v", mcq.Options)
	}
	if mcq.CorrectAnswer != "B" {
		t.Errorf("correct answer = %q", mcq.CorrectAnswer)
	}
}

func TestGenerateMCQRepairsFencedReply(t *testing.T) {
	model := &fakeModel{resp: textResponse("```json\n{\"question\": \"Pick one\", \"options\": [\"A) yes\", \"B) no\",], \"correct_answer\": \"A\"}\n```")}
	gen := NewGenerators(llm.NewClient(model))

	mcq, err := gen.GenerateMCQ(context.Background(), "basics", "beginner")
	if err != nil {
		t.Fatalf("GenerateMCQ failed on repairable payload: %v", err)
	}
	if len(mcq.Options) != 2 {
		t.Errorf("options = %v", mcq.Options)
	}
}

func TestGenerateMCQRejectsProse(t *testing.T) {
	model := &fakeModel{resp: textResponse("Sorry, I cannot produce a quiz right now.")}
	gen := NewGenerators(llm.NewClient(model))

	if _, err := gen.GenerateMCQ(context.Background(), "basics", "beginner"); err == nil {
		t.Fatal("expected error for reply without JSON")
	}
}

func TestGeneratorPromptsCarryInputs(t *testing.T) {
	model := &fakeModel{resp: textResponse("analysis text")}
	gen := NewGenerators(llm.NewClient(model))

	out, err := gen.AnalyzeCode(context.Background(), "func main() {}")
	if err != nil {
		t.Fatalf("AnalyzeCode failed: %v", err)
	}
	if out != "analysis text" {
		t.Errorf("output = %q", out)
	}

	sent := model.messages[0]
	var prompt string
	for _, part := range sent[0].Parts {
		prompt += asText(part)
	}
	if !strings.Contains(prompt, "func main() {}") {
		t.Errorf("prompt does not carry the code: %q", prompt)
	}

	model.resp = textResponse("challenge text")
	if _, err := gen.GenerateChallenge(context.Background(), "slices", "intermediate"); err != nil {
		t.Fatalf("GenerateChallenge failed: %v", err)
	}
	prompt = ""
	for _, part := range model.messages[len(model.messages)-1][0].Parts {
		prompt += asText(part)
	}
	if !strings.Contains(prompt, "slices") || !strings.Contains(prompt, "intermediate") {
		t.Errorf("challenge prompt missing topic/difficulty: %q", prompt)
	}
}

func TestConversationNextQuestion(t *testing.T) {
	model := &fakeModel{resp: textResponse("Thought: user knows loops.\nWhat do you think a slice header contains?")}
	conv := NewConversation(llm.NewClient(model))

	history := []tutor.Message{
		{Role: tutor.RoleUser, Content: "tell me about slices"},
		{Role: tutor.RoleToolResult, Content: "Explanation Result: slices are views.", CallID: "call-1", ToolName: "explain_concept"},
	}
	state := tutor.DialogueState{
		DifficultyLevel:   tutor.DifficultyIntermediate,
		Topic:             "slices",
		UserStruggleCount: 1,
	}

	reply, err := conv.NextQuestion(context.Background(), history, state)
	if err != nil {
		t.Fatalf("NextQuestion failed: %v", err)
	}
	if !strings.HasPrefix(reply, "Thought:") {
		t.Errorf("reply = %q", reply)
	}

	// system + 2 history messages
	sent := model.messages[0]
	if len(sent) != 3 {
		t.Fatalf("expected 3 messages sent, got %d", len(sent))
	}
	system := asText(sent[0].Parts[0])
	if !strings.Contains(system, "intermediate") || !strings.Contains(system, "slices") {
		t.Errorf("system prompt missing session scalars: %q", system)
	}
}

func TestHistoryToMessagesRoles(t *testing.T) {
	history := []tutor.Message{
		{Role: tutor.RoleUser, Content: "hi"},
		{Role: tutor.RoleAssistant, Content: "hello"},
		{Role: tutor.RoleToolResult, Content: "result", CallID: "call-7", ToolName: "analyze_code"},
	}

	out := historyToMessages(history)
	if len(out) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(out))
	}
	wantRoles := []string{"human", "ai", "tool"}
	for i, msg := range out {
		if string(msg.Role) != wantRoles[i] {
			t.Errorf("message %d role = %s, want %s", i, msg.Role, wantRoles[i])
		}
	}
}
