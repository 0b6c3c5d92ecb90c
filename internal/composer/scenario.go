package composer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"server/internal/domain"
)

// Scenario identifies which of the four generation modes a request resolves
// to. The choice is made exactly once, from input presence alone, so no later
// code path ever has to re-check nullable field combinations.
type Scenario string

const (
	// ScenarioIdentityTransfer replaces the identity in the reference's base
	// composition with the subject's identity while keeping the reference
	// lighting, geometry and grading.
	ScenarioIdentityTransfer Scenario = "identity-transfer"
	// ScenarioGenerativePlacement invents an environment from the brief and
	// places the subject inside it.
	ScenarioGenerativePlacement Scenario = "generative-placement"
	// ScenarioGuidedReimagination keeps the reference's compositional and
	// lighting skeleton but transforms content per the brief.
	ScenarioGuidedReimagination Scenario = "guided-reimagination"
	// ScenarioPureSynthesis generates from the brief alone.
	ScenarioPureSynthesis Scenario = "pure-synthesis"
)

var titleCaser = cases.Title(language.English)

// Label returns a human-readable name for logs and API responses.
func (s Scenario) Label() string {
	return titleCaser.String(strings.ReplaceAll(string(s), "-", " "))
}

// SelectScenario picks exactly one scenario from the presence of the three
// optional inputs. All-absent is rejected before any network call is made.
func SelectScenario(subject, reference, brief bool) (Scenario, error) {
	switch {
	case subject && reference:
		return ScenarioIdentityTransfer, nil
	case subject:
		return ScenarioGenerativePlacement, nil
	case reference:
		return ScenarioGuidedReimagination, nil
	case brief:
		return ScenarioPureSynthesis, nil
	default:
		return "", domain.ErrInvalidRequest
	}
}
