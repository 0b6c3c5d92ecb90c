package composer

import "strings"

// OutputType enumerates the supported creative formats.
type OutputType string

const (
	OutputSquareFeed    OutputType = "square-feed"
	OutputVerticalStory OutputType = "vertical-story"
	OutputLandingHero   OutputType = "landing-hero"
	OutputLandingMobile OutputType = "landing-mobile"
	OutputThumbnail     OutputType = "thumbnail"
)

// LandingPosition tells the composer where the subject should be anchored on a
// landing format. left/center/right apply to landing-hero, top/bottom to
// landing-mobile.
type LandingPosition string

const (
	PositionLeft   LandingPosition = "left"
	PositionCenter LandingPosition = "center"
	PositionRight  LandingPosition = "right"
	PositionTop    LandingPosition = "top"
	PositionBottom LandingPosition = "bottom"
)

// Format pairs the backend aspect ratio with the layout instruction sent as
// part of the composed prompt.
type Format struct {
	AspectRatio string
	Layout      string
}

// NormalizeOutputType sanitizes free-form user input into a supported output
// type. Unknown values fall back to square-feed rather than erroring.
func NormalizeOutputType(value string) OutputType {
	switch OutputType(strings.ToLower(strings.TrimSpace(value))) {
	case OutputVerticalStory:
		return OutputVerticalStory
	case OutputLandingHero:
		return OutputLandingHero
	case OutputLandingMobile:
		return OutputLandingMobile
	case OutputThumbnail:
		return OutputThumbnail
	default:
		return OutputSquareFeed
	}
}

// NormalizeLandingPosition sanitizes a landing position, defaulting per format
// so an out-of-range value never reaches the instruction text.
func NormalizeLandingPosition(value string, output OutputType) LandingPosition {
	pos := LandingPosition(strings.ToLower(strings.TrimSpace(value)))
	switch output {
	case OutputLandingHero:
		if pos == PositionLeft || pos == PositionCenter || pos == PositionRight {
			return pos
		}
		return PositionCenter
	case OutputLandingMobile:
		if pos == PositionTop || pos == PositionBottom {
			return pos
		}
		return PositionBottom
	default:
		return ""
	}
}

// ResolveFormat maps an output type and landing position to the aspect ratio
// and layout instruction for that format. It is total: unrecognized output
// types resolve to the square-feed defaults.
func ResolveFormat(output OutputType, position LandingPosition) Format {
	switch output {
	case OutputVerticalStory:
		return Format{
			AspectRatio: "9:16",
			Layout:      "Compose vertically for a full-screen story placement; keep key content inside the central safe area.",
		}
	case OutputThumbnail:
		return Format{
			AspectRatio: "16:9",
			Layout:      "Compose for a small thumbnail: high contrast, rule-of-thirds subject placement, strong rim light separating the subject from the background.",
		}
	case OutputLandingHero:
		return Format{AspectRatio: "16:9", Layout: heroLayout(position)}
	case OutputLandingMobile:
		return Format{AspectRatio: "9:16", Layout: mobileLayout(position)}
	default:
		return Format{
			AspectRatio: "1:1",
			Layout:      "Compose a balanced square image suitable for a social feed.",
		}
	}
}

func heroLayout(position LandingPosition) string {
	switch position {
	case PositionLeft:
		return "Anchor the subject firmly on the LEFT side of the frame and keep the RIGHT side as clean, low-detail negative space reserved for headline text."
	case PositionRight:
		return "Anchor the subject firmly on the RIGHT side of the frame and keep the LEFT side as clean, low-detail negative space reserved for headline text."
	default:
		return "Center the subject and keep symmetric, low-detail negative space on both sides for headline text."
	}
}

func mobileLayout(position LandingPosition) string {
	switch position {
	case PositionTop:
		return "Anchor the subject at the TOP of the frame and extend the background seamlessly downward so the BOTTOM stays clean negative space for overlay text."
	default:
		return "Anchor the subject at the BOTTOM of the frame and extend the background seamlessly upward so the TOP stays clean negative space for overlay text."
	}
}

// RefinementAspect re-derives the aspect ratio for an edit pass from the
// output type alone; landing position plays no role here.
func RefinementAspect(output OutputType) string {
	switch output {
	case OutputVerticalStory, OutputLandingMobile:
		return "9:16"
	case OutputThumbnail, OutputLandingHero:
		return "16:9"
	default:
		return "1:1"
	}
}
