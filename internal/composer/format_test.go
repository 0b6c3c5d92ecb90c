package composer

import (
	"strings"
	"testing"
)

func TestResolveFormatTable(t *testing.T) {
	tests := []struct {
		name       string
		output     OutputType
		position   LandingPosition
		wantAspect string
		wantPart   string
	}{
		{"square feed", OutputSquareFeed, "", "1:1", "square"},
		{"vertical story", OutputVerticalStory, "", "9:16", "story"},
		{"thumbnail", OutputThumbnail, "", "16:9", "rule-of-thirds"},
		{"hero left", OutputLandingHero, PositionLeft, "16:9", "LEFT side"},
		{"hero right", OutputLandingHero, PositionRight, "16:9", "RIGHT side"},
		{"hero center", OutputLandingHero, PositionCenter, "16:9", "symmetric"},
		{"mobile top", OutputLandingMobile, PositionTop, "9:16", "TOP"},
		{"mobile bottom", OutputLandingMobile, PositionBottom, "9:16", "BOTTOM"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveFormat(tc.output, tc.position)
			if got.AspectRatio != tc.wantAspect {
				t.Fatalf("aspect ratio = %q, want %q", got.AspectRatio, tc.wantAspect)
			}
			if !strings.Contains(got.Layout, tc.wantPart) {
				t.Fatalf("layout missing %q: %s", tc.wantPart, got.Layout)
			}
		})
	}
}

func TestResolveFormatUnknownFallsBack(t *testing.T) {
	got := ResolveFormat(OutputType("poster-a0"), PositionLeft)
	want := ResolveFormat(OutputSquareFeed, "")
	if got != want {
		t.Fatalf("unknown output type = %+v, want square-feed defaults %+v", got, want)
	}
}

func TestResolveFormatDeterministic(t *testing.T) {
	first := ResolveFormat(OutputLandingHero, PositionLeft)
	second := ResolveFormat(OutputLandingHero, PositionLeft)
	if first != second {
		t.Fatalf("resolver not deterministic: %+v vs %+v", first, second)
	}
}

func TestHeroLeftMentionsOppositeNegativeSpace(t *testing.T) {
	got := ResolveFormat(OutputLandingHero, PositionLeft)
	if !strings.Contains(got.Layout, "LEFT") {
		t.Fatalf("hero-left layout missing LEFT anchoring: %s", got.Layout)
	}
	if !strings.Contains(got.Layout, "RIGHT side as clean, low-detail negative space") {
		t.Fatalf("hero-left layout missing negative-space-on-right directive: %s", got.Layout)
	}
}

func TestNormalizeOutputType(t *testing.T) {
	if got := NormalizeOutputType(" Landing-Hero "); got != OutputLandingHero {
		t.Fatalf("NormalizeOutputType = %q", got)
	}
	if got := NormalizeOutputType("banner"); got != OutputSquareFeed {
		t.Fatalf("unknown type should fall back to square-feed, got %q", got)
	}
}

func TestNormalizeLandingPosition(t *testing.T) {
	tests := []struct {
		value  string
		output OutputType
		want   LandingPosition
	}{
		{"left", OutputLandingHero, PositionLeft},
		{"top", OutputLandingHero, PositionCenter},
		{"top", OutputLandingMobile, PositionTop},
		{"left", OutputLandingMobile, PositionBottom},
		{"left", OutputSquareFeed, ""},
	}
	for _, tc := range tests {
		if got := NormalizeLandingPosition(tc.value, tc.output); got != tc.want {
			t.Fatalf("NormalizeLandingPosition(%q, %q) = %q, want %q", tc.value, tc.output, got, tc.want)
		}
	}
}

func TestRefinementAspect(t *testing.T) {
	tests := []struct {
		output OutputType
		want   string
	}{
		{OutputVerticalStory, "9:16"},
		{OutputLandingMobile, "9:16"},
		{OutputThumbnail, "16:9"},
		{OutputLandingHero, "16:9"},
		{OutputSquareFeed, "1:1"},
		{OutputType("unknown"), "1:1"},
	}
	for _, tc := range tests {
		if got := RefinementAspect(tc.output); got != tc.want {
			t.Fatalf("RefinementAspect(%q) = %q, want %q", tc.output, got, tc.want)
		}
	}
}
