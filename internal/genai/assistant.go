package genai

import (
	"context"
	"strings"

	"server/internal/domain"
)

// Message is one turn of the assistant conversation. History order is
// preserved verbatim on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const assistantFraming = `You are the in-app assistant of a creative generation studio.
Answer questions about composing requests, output formats, text overlays and
refining results. Be concise and concrete; do not invent product features.`

// AssistantTurn performs one stateless text exchange. The caller owns the
// history; this client only echoes it to the backend in order.
func (c *Client) AssistantTurn(ctx context.Context, history []Message, message string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if strings.EqualFold(turn.Role, "model") || strings.EqualFold(turn.Role, "assistant") {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: turn.Content}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: message}}})

	request := geminiGenerateContentRequest{
		Contents:          contents,
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: assistantFraming}}},
		GenerationConfig:  &geminiGenerationConfig{Temperature: 0.7, CandidateCount: 1},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, c.textModel, request, &response); err != nil {
		return "", err
	}

	reply := collectText(&response)
	if strings.TrimSpace(reply) == "" {
		return "", domain.ErrEmptyResponse
	}
	return reply, nil
}
