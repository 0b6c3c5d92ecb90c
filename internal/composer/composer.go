package composer

import (
	"fmt"
	"strings"

	"server/internal/domain"
)

// TargetResolution is the fixed quality target appended to every instruction.
const TargetResolution = "2K"

// Request carries everything the user assembled for one generation attempt.
// At least one of Subject, Reference or Brief must be present.
type Request struct {
	Subject         domain.MediaInput
	Reference       domain.MediaInput
	Output          OutputType
	Landing         LandingPosition
	TextMode        TextMode
	CustomText      string
	Brief           string
	AnalysisContext string
}

// Payload is the composed backend request: ordered media parts followed by
// exactly one instruction text. The media order is scenario-dependent and
// meaningful — it encodes which image is the compositional base plate.
type Payload struct {
	Scenario    Scenario
	Format      Format
	Media       []domain.MediaInput
	Instruction string
}

// Compose validates the request, selects the scenario and builds the single
// instruction text from its fixed segment sequence. The segment order is a
// contract: consumers may assert each segment's position, not just presence.
func Compose(req Request) (*Payload, error) {
	scenario, err := SelectScenario(req.Subject.Present(), req.Reference.Present(), strings.TrimSpace(req.Brief) != "")
	if err != nil {
		return nil, err
	}

	format := ResolveFormat(req.Output, req.Landing)

	segments := []string{
		roleFraming,
		taskFraming(scenario),
		formatSegment(format),
		inputLegend(scenario),
	}
	if notes := strings.TrimSpace(req.AnalysisContext); notes != "" {
		segments = append(segments, "Technical notes from reference analysis:\n"+notes)
	}
	if brief := strings.TrimSpace(req.Brief); brief != "" {
		segments = append(segments, "Creative brief: "+brief)
	}
	segments = append(segments,
		directives(scenario),
		ResolveOverlay(req.TextMode.PreservesText(), req.CustomText),
		qualityDirective,
	)

	return &Payload{
		Scenario:    scenario,
		Format:      format,
		Media:       orderedMedia(scenario, req),
		Instruction: strings.Join(segments, "\n\n"),
	}, nil
}

// orderedMedia returns the media parts in the scenario's contractual order:
// reference before subject whenever both are present, so the backend treats
// the reference as the base plate.
func orderedMedia(scenario Scenario, req Request) []domain.MediaInput {
	switch scenario {
	case ScenarioIdentityTransfer:
		return []domain.MediaInput{req.Reference, req.Subject}
	case ScenarioGenerativePlacement:
		return []domain.MediaInput{req.Subject}
	case ScenarioGuidedReimagination:
		return []domain.MediaInput{req.Reference}
	default:
		return nil
	}
}

const roleFraming = "You are a senior advertising retoucher and art director producing a finished campaign visual."

const qualityDirective = "Output: one single photorealistic image at " + TargetResolution + " resolution, free of artifacts, watermarks and borders."

func taskFraming(scenario Scenario) string {
	switch scenario {
	case ScenarioIdentityTransfer:
		return "Task (" + scenario.Label() + "): rebuild the reference composition with the subject's identity in place of the person in the reference, preserving the reference's lighting, geometry and color grading exactly."
	case ScenarioGenerativePlacement:
		return "Task (" + scenario.Label() + "): invent a believable environment from the creative brief and place the subject inside it with lighting matched to the new scene."
	case ScenarioGuidedReimagination:
		return "Task (" + scenario.Label() + "): keep the reference's compositional and lighting skeleton but transform the content according to the creative brief."
	default:
		return "Task (" + scenario.Label() + "): generate the entire visual from the creative brief alone."
	}
}

func inputLegend(scenario Scenario) string {
	switch scenario {
	case ScenarioIdentityTransfer:
		return "Inputs: image 1 is the layout reference (the base plate), image 2 is the subject whose identity must appear in the output."
	case ScenarioGenerativePlacement:
		return "Inputs: image 1 is the subject whose identity must appear in the output."
	case ScenarioGuidedReimagination:
		return "Inputs: image 1 is the layout reference (the base plate)."
	default:
		return "Inputs: no images are attached; the creative brief is the only source."
	}
}

func directives(scenario Scenario) string {
	var steps []string
	switch scenario {
	case ScenarioIdentityTransfer:
		steps = []string{
			"Match the subject's face, build and skin tone precisely; no identity drift.",
			"Re-pose the subject to fit the reference's pose and camera angle.",
			"Relight the subject so direction, softness and color of light match the reference.",
			"Keep the reference's background, props and color grading untouched.",
		}
	case ScenarioGenerativePlacement:
		steps = []string{
			"Preserve the subject's identity and proportions exactly as photographed.",
			"Build the environment described in the brief around the subject.",
			"Light the new environment first, then match the subject's lighting to it.",
			"Ground the subject with correct contact shadows and reflections.",
		}
	case ScenarioGuidedReimagination:
		steps = []string{
			"Keep the reference's framing, perspective and light direction.",
			"Replace content per the brief; if a different character is requested, generate a synthetic one.",
			"Carry the reference's color grading into the transformed scene.",
		}
	default:
		steps = []string{
			"Follow the creative brief literally for subject matter and mood.",
			"Choose a camera angle and lighting setup appropriate to the described scene.",
		}
	}
	var b strings.Builder
	b.WriteString("Directives:")
	for i, step := range steps {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, step))
	}
	return b.String()
}

func formatSegment(format Format) string {
	return "Format: aspect ratio " + format.AspectRatio + ". " + format.Layout
}
