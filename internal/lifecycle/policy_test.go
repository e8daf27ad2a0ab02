package lifecycle_test

import (
	"testing"

	"github.com/cleansweep/litterwatch/internal/lifecycle"
	"github.com/cleansweep/litterwatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func summaryOf(categories ...string) models.DetectionSummary {
	detections := make([]models.Detection, 0, len(categories))
	for _, c := range categories {
		detections = append(detections, models.Detection{
			BBox:       [4]float64{0, 0, 100, 100},
			Confidence: 0.9,
			Label:      c,
		})
	}
	return models.DetectionSummary{
		Count:      len(categories),
		Categories: categories,
		Detections: detections,
	}
}

func repeat(category string, n int) []string {
	categories := make([]string, n)
	for i := range categories {
		categories[i] = category
	}
	return categories
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		categories  []string
		wantAccept  bool
		wantPlastic int
		wantPile    int
	}{
		{
			name:        "five plastic bottles accepted",
			categories:  repeat("plastic_bottle", 5),
			wantAccept:  true,
			wantPlastic: 5,
			wantPile:    0,
		},
		{
			name:        "single pile with one plastic accepted",
			categories:  []string{"litter_pile", "plastic_bag"},
			wantAccept:  true,
			wantPlastic: 1,
			wantPile:    1,
		},
		{
			name:        "four plastic bottles rejected",
			categories:  repeat("plastic_bottle", 4),
			wantAccept:  false,
			wantPlastic: 4,
			wantPile:    0,
		},
		{
			name:       "empty summary rejected",
			categories: nil,
			wantAccept: false,
		},
		{
			name:       "non-litter objects rejected",
			categories: []string{"bench", "tree", "dog"},
			wantAccept: false,
		},
		{
			name:        "pile accepted regardless of plastic count",
			categories:  append(repeat("garbage_pile", 1), "bench"),
			wantAccept:  true,
			wantPlastic: 0,
			wantPile:    1,
		},
		{
			name:        "matching is case-insensitive",
			categories:  []string{"Plastic_Bottle", "PLASTIC_bag", "pLastic_cup", "PLASTIC_WRAP", "Plastic_straw"},
			wantAccept:  true,
			wantPlastic: 5,
			wantPile:    0,
		},
		{
			name:        "substring match inside longer labels",
			categories:  []string{"pLitterStreet_pile_of_waste"},
			wantAccept:  true,
			wantPlastic: 0,
			wantPile:    1,
		},
		{
			name:        "many plastics accepted without a pile",
			categories:  repeat("plastic_cup", 12),
			wantAccept:  true,
			wantPlastic: 12,
			wantPile:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := lifecycle.Evaluate(summaryOf(tt.categories...))
			assert.Equal(t, tt.wantAccept, decision.Accept)
			assert.Equal(t, tt.wantPlastic, decision.PlasticCount)
			assert.Equal(t, tt.wantPile, decision.PileCount)
		})
	}
}

func TestEvaluateOrderIndependent(t *testing.T) {
	forward := summaryOf("plastic_bottle", "litter_pile", "bench")
	backward := summaryOf("bench", "litter_pile", "plastic_bottle")

	assert.Equal(t, lifecycle.Evaluate(forward), lifecycle.Evaluate(backward))
}
