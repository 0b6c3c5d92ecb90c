package composer

import "strings"

// TextMode enumerates how existing text in the source imagery is handled.
type TextMode string

const (
	TextModeClean  TextMode = "clean"
	TextModeMockup TextMode = "mockup"
	TextModeCustom TextMode = "custom"
)

// NormalizeTextMode sanitizes free-form user input into a supported mode.
func NormalizeTextMode(mode string) TextMode {
	switch TextMode(strings.ToLower(strings.TrimSpace(mode))) {
	case TextModeMockup:
		return TextModeMockup
	case TextModeCustom:
		return TextModeCustom
	default:
		return TextModeClean
	}
}

// PreservesText reports whether the mode keeps text treatment from the source.
func (m TextMode) PreservesText() bool { return m != TextModeClean }

// ResolveOverlay maps the preserve-text flag and the custom text value to the
// overlay instruction appended to the prompt.
//
//	preserve=false            -> remove all text, clean plate
//	preserve=true, text given -> render the literal text in the source style
//	preserve=true, no text    -> mimic the source text layout as a mockup
func ResolveOverlay(preserve bool, customText string) string {
	if !preserve {
		return "Remove every piece of existing text, logo type and lettering; deliver a clean plate with no readable characters."
	}
	if text := strings.TrimSpace(customText); text != "" {
		return "Render this literal text in the image: \"" + text + "\". Match the style and placement of text in the source material as closely as possible."
	}
	return "Mimic the source's text layout as an un-rendered mockup: blocks with matching visual weight and placement, legibility not required."
}
