package langchain

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/socratutor/internal/llm"
	"github.com/socratutor/internal/tutor"
)

// Conversation implements tutor.Dialogue: given recent history and the
// session scalars it produces the next guiding message.
type Conversation struct {
	client *llm.Client
}

// NewConversation builds the dialogue capability around client.
func NewConversation(client *llm.Client) *Conversation {
	return &Conversation{client: client}
}

func (c *Conversation) NextQuestion(ctx context.Context, history []tutor.Message, state tutor.DialogueState) (string, error) {
	system := fmt.Sprintf(socraticSystemPrompt,
		state.DifficultyLevel, state.Topic, state.SubTopic,
		state.UserStruggleCount, state.MCQActive,
	)
	messages := append(
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, system)},
		historyToMessages(history)...,
	)

	resp, err := c.client.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("dialogue call returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// historyToMessages converts the conversation log to langchaingo chat
// messages. Tool results travel as tool-response parts so providers keep the
// call correlation.
func historyToMessages(history []tutor.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case tutor.RoleUser:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		case tutor.RoleAssistant:
			out = append(out, llms.TextParts(llms.ChatMessageTypeAI, msg.Content))
		case tutor.RoleToolResult:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: msg.CallID,
						Name:       msg.ToolName,
						Content:    msg.Content,
					},
				},
			})
		}
	}
	return out
}
