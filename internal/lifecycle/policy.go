package lifecycle

import (
	"strings"

	"github.com/cleansweep/litterwatch/internal/models"
)

const (
	// minPileDetections accepts a report as soon as one litter pile is seen.
	minPileDetections = 1
	// minPlasticDetections accepts scattered plastic once enough pieces are seen.
	minPlasticDetections = 5
)

// Decision is the outcome of the acceptance policy for one detection summary.
type Decision struct {
	Accept       bool
	PlasticCount int
	PileCount    int
}

// Evaluate applies the acceptance policy to a detection summary.
//
// A report is accepted when the detector saw at least one pile of litter, or
// at least five plastic items. Category labels are matched by case-insensitive
// substring so model-specific names like "pLitter_pile" or "Plastic_bottle"
// count. The decision is deterministic and independent of detection order.
func Evaluate(summary models.DetectionSummary) Decision {
	var decision Decision
	for _, category := range summary.Categories {
		lower := strings.ToLower(category)
		if strings.Contains(lower, "plastic") {
			decision.PlasticCount++
		}
		if strings.Contains(lower, "pile") {
			decision.PileCount++
		}
	}
	decision.Accept = decision.PileCount >= minPileDetections || decision.PlasticCount >= minPlasticDetections
	return decision
}
