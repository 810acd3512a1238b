package usecase

import (
	"errors"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

// aggregateTotals sums per-item facts into meal totals rounded to 2 decimals.
// Individual item failures never reach this point: they already arrived as
// zero-valued placeholders. The only error case is a structurally absent list.
func aggregateTotals(entries []domain.NutritionEntry) (*domain.NutritionFacts, error) {
	if entries == nil {
		return nil, errors.New("nutrition entries missing")
	}
	var total domain.NutritionFacts
	for _, entry := range entries {
		total = total.Add(entry.Facts)
	}
	rounded := total.Round2()
	return &rounded, nil
}
