package genai

import (
	"context"
	"strings"

	"server/internal/composer"
	"server/internal/domain"
)

// Generate sends a composed payload to the image model and interprets the
// response. The credential is checked before any network traffic is composed.
func (c *Client) Generate(ctx context.Context, payload *composer.Payload) (*domain.Artifact, error) {
	if strings.TrimSpace(c.keys.APIKey()) == "" {
		return nil, domain.ErrMissingCredential
	}

	parts := make([]geminiPart, 0, len(payload.Media)+1)
	for _, media := range payload.Media {
		parts = append(parts, mediaPart(media))
	}
	parts = append(parts, geminiPart{Text: payload.Instruction})

	request := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:     1,
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig: &geminiImageConfig{
				AspectRatio: payload.Format.AspectRatio,
				ImageSize:   composer.TargetResolution,
			},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, c.imageModel, request, &response); err != nil {
		return nil, err
	}

	artifact, err := interpretImageResponse(&response)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("model", c.imageModel).
		Str("scenario", string(payload.Scenario)).
		Str("aspect_ratio", payload.Format.AspectRatio).
		Int("bytes", len(artifact.Data)).
		Msg("genai: generated image artifact")

	return artifact, nil
}

// Refine re-invokes the image model in edit mode against a prior artifact.
// The instruction sent to the backend constrains the edit to the targeted
// region; regenerating the image wholesale is explicitly ruled out. The
// aspect ratio is re-derived from the output type alone.
func (c *Client) Refine(ctx context.Context, artifact *domain.Artifact, instruction string, output composer.OutputType) (*domain.Artifact, error) {
	parts := []geminiPart{
		mediaPart(artifact.AsMediaInput()),
		{Text: refinementInstruction(instruction)},
	}

	request := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:     1,
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig: &geminiImageConfig{
				AspectRatio: composer.RefinementAspect(output),
				ImageSize:   composer.TargetResolution,
			},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, c.imageModel, request, &response); err != nil {
		return nil, err
	}

	refined, err := interpretImageResponse(&response)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("model", c.imageModel).
		Str("aspect_ratio", composer.RefinementAspect(output)).
		Int("bytes", len(refined.Data)).
		Msg("genai: refined image artifact")

	return refined, nil
}

func refinementInstruction(instruction string) string {
	return strings.Join([]string{
		"Apply exactly this localized edit to the supplied image: " + strings.TrimSpace(instruction) + ".",
		"Restrict every change to the targeted region.",
		"Preserve the grain, identity, lighting and composition of everything outside that region.",
		"Do not regenerate the image wholesale.",
	}, " ")
}
