package genai

import (
	"context"
	"fmt"
	"strings"

	"server/internal/domain"
)

const analysisPrompt = `Analyze this layout reference as a photography technician.
Describe, as compact technical notes: light direction and quality, color grading,
camera angle and focal length impression, composition skeleton, and where text or
negative space sits. No commentary, notes only.`

// Analyze asks the text model for technical notes about a reference image.
// The returned text is used verbatim as analysis context when composing the
// generation instruction.
func (c *Client) Analyze(ctx context.Context, reference domain.MediaInput) (string, error) {
	if !reference.Present() {
		return "", fmt.Errorf("%w: reference image is required for analysis", domain.ErrInvalidRequest)
	}

	request := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{mediaPart(reference), {Text: analysisPrompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{Temperature: 0.2, CandidateCount: 1},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, c.textModel, request, &response); err != nil {
		return "", err
	}

	notes := collectText(&response)
	if strings.TrimSpace(notes) == "" {
		return "", domain.ErrEmptyResponse
	}
	return notes, nil
}
