package langchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/socratutor/internal/llm"
	"github.com/socratutor/internal/tutor"
)

// Generators implements tutor.ToolSet with per-handler prompts over a shared
// model client.
type Generators struct {
	client *llm.Client
}

// NewGenerators builds the content-generation capabilities around client.
func NewGenerators(client *llm.Client) *Generators {
	return &Generators{client: client}
}

func (g *Generators) AnalyzeCode(ctx context.Context, code string) (string, error) {
	return g.client.Generate(ctx, fmt.Sprintf(analyzeCodePrompt, code))
}

func (g *Generators) ExplainConcept(ctx context.Context, concept string) (string, error) {
	return g.client.Generate(ctx, fmt.Sprintf(explainConceptPrompt, concept))
}

func (g *Generators) GenerateChallenge(ctx context.Context, topic, difficulty string) (string, error) {
	return g.client.Generate(ctx, fmt.Sprintf(generateChallengePrompt, topic, difficulty))
}

// GenerateMCQ asks for a strict-JSON quiz payload and decodes it, repairing
// malformed output before giving up.
func (g *Generators) GenerateMCQ(ctx context.Context, topic, difficulty string) (tutor.MCQ, error) {
	reply, err := g.client.Generate(ctx, fmt.Sprintf(generateMCQPrompt, topic, difficulty))
	if err != nil {
		return tutor.MCQ{}, err
	}

	var mcq tutor.MCQ
	result, err := llm.DecodeInto(reply, &mcq)
	if err != nil {
		return tutor.MCQ{}, fmt.Errorf("MCQ payload unparseable: %w", err)
	}
	if result.RepairStats.WasRepaired {
		log.Debug().Str("topic", topic).Msg("MCQ payload required JSON repair")
	}

	mcq.Question = strings.TrimSpace(mcq.Question)
	mcq.CorrectAnswer = strings.TrimSpace(mcq.CorrectAnswer)
	return mcq, nil
}
