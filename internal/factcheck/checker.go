// Package factcheck verifies free-text claims against a curated
// reference table. It is an informational side branch and never gates
// the main pipeline.
package factcheck

import (
	"strings"

	"github.com/pvoronin/newsdesk/internal/model"
)

// FactEntry binds a lowercase cue phrase to its verdict. Entries are
// scanned in slice order; the first cue contained in a claim wins.
type FactEntry struct {
	Cue        string
	Status     string
	References []model.Reference
}

// Facts is the curated known-facts table.
type Facts []FactEntry

// DefaultFacts returns the built-in reference table.
func DefaultFacts() Facts {
	return Facts{
		{
			Cue:    "newsroom automation toolkit",
			Status: model.ClaimSupported,
			References: []model.Reference{
				{Source: "Example Company Press Release", URL: "https://example.com/newsroom/openai-toolkit"},
			},
		},
		{
			Cue:    "hyperlocal climate data",
			Status: model.ClaimSupported,
			References: []model.Reference{
				{Source: "Metro Climate Desk Announcement", URL: "https://example.com/newsroom/climate-desk"},
			},
		},
	}
}

// Checker verifies claims against the fact table.
type Checker struct {
	facts Facts
}

// New creates a checker. A nil table uses the defaults.
func New(facts Facts) *Checker {
	if facts == nil {
		facts = DefaultFacts()
	}
	return &Checker{facts: facts}
}

// Check is the rule engine: one verdict per claim, order preserved.
// Claims matching no cue come back unverified with no references.
func (c *Checker) Check(claims []string) []model.CheckedClaim {
	checked := make([]model.CheckedClaim, 0, len(claims))
	for _, claim := range claims {
		result := model.CheckedClaim{
			Claim:      claim,
			Status:     model.ClaimUnverified,
			References: []model.Reference{},
		}

		lowered := strings.ToLower(claim)
		for _, entry := range c.facts {
			if strings.Contains(lowered, entry.Cue) {
				result.Status = entry.Status
				result.References = entry.References
				break
			}
		}

		checked = append(checked, result)
	}
	return checked
}
