package langchain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/socratutor/internal/llm"
	"github.com/socratutor/internal/tutor"
)

// Supervisor implements tutor.Decider on top of a langchaingo model using
// function-calling: the model must pick exactly one routing tool per turn.
type Supervisor struct {
	client *llm.Client
}

// NewSupervisor builds the routing capability around client.
func NewSupervisor(client *llm.Client) *Supervisor {
	return &Supervisor{client: client}
}

// routingTools are the function definitions the routing model selects
// between. Names match the wire names of the routes.
func routingTools() []llms.Tool {
	objectSchema := func(props map[string]any, required []string) map[string]any {
		return map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		}
	}

	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tutor.RouteDialogue.String(),
				Description: "Continue the Socratic dialogue directly. Default for general queries, concept discussions, and follow-ups.",
				Parameters:  objectSchema(map[string]any{}, nil),
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tutor.RouteAnalyzeCode.String(),
				Description: "Route to code analysis for debugging or code review. Requires the code snippet.",
				Parameters: objectSchema(map[string]any{
					"code": map[string]any{"type": "string", "description": "The code snippet to analyze."},
				}, []string{"code"}),
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tutor.RouteExplainConcept.String(),
				Description: "Route to concept explanation for a specific concept, keyword, or error. Requires the concept.",
				Parameters: objectSchema(map[string]any{
					"concept": map[string]any{"type": "string", "description": "The concept to explain."},
				}, []string{"concept"}),
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tutor.RouteGenerateChallenge.String(),
				Description: "Route to the challenge generator to create a coding exercise. Optionally specify topic and difficulty.",
				Parameters: objectSchema(map[string]any{
					"topic":      map[string]any{"type": "string"},
					"difficulty": map[string]any{"type": "string"},
				}, nil),
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tutor.RouteGenerateMCQ.String(),
				Description: "Route to the MCQ generator to create a multiple-choice question. Optionally specify topic and difficulty.",
				Parameters: objectSchema(map[string]any{
					"topic":      map[string]any{"type": "string"},
					"difficulty": map[string]any{"type": "string"},
				}, nil),
			},
		},
	}
}

// Decide asks the routing model for exactly one tool call and converts it to
// a Decision. Any shape the model returns that is not a single recognized
// tool call is an error; the engine degrades those to the dialogue route.
func (s *Supervisor) Decide(ctx context.Context, history []tutor.Message, difficulty tutor.Difficulty, topic, subTopic string) (tutor.Decision, error) {
	system := fmt.Sprintf(supervisorSystemPrompt, difficulty, topic, subTopic)
	messages := append(
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, system)},
		historyToMessages(history)...,
	)

	resp, err := s.client.GenerateContent(ctx, messages,
		llms.WithTools(routingTools()),
	)
	if err != nil {
		return tutor.Decision{}, fmt.Errorf("routing call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return tutor.Decision{}, fmt.Errorf("routing call returned no choices")
	}

	choice := resp.Choices[0]
	if len(choice.ToolCalls) == 0 {
		return tutor.Decision{}, fmt.Errorf("routing model did not call a tool")
	}

	call := choice.ToolCalls[0]
	if call.FunctionCall == nil {
		return tutor.Decision{}, fmt.Errorf("routing tool call has no function payload")
	}

	decision, err := decisionFromToolCall(call.FunctionCall.Name, call.FunctionCall.Arguments, call.ID)
	if err != nil {
		return tutor.Decision{}, err
	}

	log.Debug().
		Str("route", decision.Route.String()).
		Str("call_id", decision.CallID).
		Msg("Routing decision made")
	return decision, nil
}

// decisionFromToolCall maps a raw tool call to a Decision, repairing the
// argument JSON when the model mangles it.
func decisionFromToolCall(name, arguments, callID string) (tutor.Decision, error) {
	route, ok := tutor.ParseRoute(name)
	if !ok {
		return tutor.Decision{}, fmt.Errorf("unknown routing tool %q", name)
	}

	var input tutor.ToolInput
	if arguments != "" && arguments != "{}" {
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			repaired, _, repairErr := llm.RepairJSON(arguments)
			if repairErr != nil {
				return tutor.Decision{}, fmt.Errorf("routing arguments unparseable: %w", err)
			}
			if err := json.Unmarshal([]byte(repaired), &input); err != nil {
				return tutor.Decision{}, fmt.Errorf("routing arguments unparseable after repair: %w", err)
			}
		}
	}

	return tutor.Decision{Route: route, Input: input, CallID: callID}, nil
}
