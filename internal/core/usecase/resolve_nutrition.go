package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodlens/meal-vision/internal/core/domain"
	"github.com/foodlens/meal-vision/internal/core/nutrition"
	"github.com/foodlens/meal-vision/internal/core/ports"
)

// NutritionResolver resolves per-item nutrition facts through the tiered
// chain: cache, external search over trusted domains, regex extraction,
// static backup table. It never returns an error: an unresolvable item
// degrades to an all-zero result with Found=false.
type NutritionResolver struct {
	search        ports.NutritionSearcher
	cache         ports.NutritionCache
	searchEnabled bool
	maxCandidates int
	logger        *slog.Logger
}

func NewNutritionResolver(
	search ports.NutritionSearcher,
	cache ports.NutritionCache,
	searchEnabled bool,
	maxCandidates int,
	logger *slog.Logger,
) *NutritionResolver {
	if maxCandidates <= 0 {
		maxCandidates = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NutritionResolver{
		search:        search,
		cache:         cache,
		searchEnabled: searchEnabled,
		maxCandidates: maxCandidates,
		logger:        logger,
	}
}

func (r *NutritionResolver) Resolve(ctx context.Context, name, quantity, unit string) domain.NutritionLookupResult {
	key := cacheKey(name, quantity, unit)
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return cached
		}
	}

	if r.searchEnabled && r.search != nil {
		if result, ok := r.resolveViaSearch(ctx, name, quantity, unit); ok {
			// Only genuine search successes are cached; backup-table
			// estimates and failures are not.
			if r.cache != nil {
				r.cache.Put(key, result)
			}
			return result
		}
	}

	if facts, ok := nutrition.LookupBackup(name); ok {
		return domain.NutritionLookupResult{
			Found:      true,
			Facts:      scaleForQuantity(facts, 100, quantity, unit),
			Source:     domain.SourceEstimated,
			Confidence: domain.TierLow,
		}
	}

	return domain.NutritionLookupResult{
		Found:      false,
		Source:     domain.SourceNone,
		Confidence: domain.TierLow,
	}
}

func (r *NutritionResolver) resolveViaSearch(ctx context.Context, name, quantity, unit string) (domain.NutritionLookupResult, bool) {
	query := fmt.Sprintf("%s nutrition facts per 100g", name)
	hits, err := r.search.Search(ctx, query, r.maxCandidates)
	if err != nil {
		r.logger.Warn("nutrition_search_failed", "item", name, "error", err)
		return domain.NutritionLookupResult{}, false
	}

	var best *domain.NutritionLookupResult
	var bestServing float64
	for _, hit := range hits {
		facts, extracted := nutrition.ExtractFacts(hit.Content)
		if extracted < nutrition.MinExtractedNutrients {
			continue
		}
		candidate := domain.NutritionLookupResult{
			Found:      true,
			Facts:      facts,
			Source:     hit.URL,
			Confidence: nutrition.SourceTier(hit.URL),
		}
		serving := nutrition.ServingGrams(hit.Content)
		if candidate.Confidence == domain.TierHigh {
			best = &candidate
			bestServing = serving
			break
		}
		if best == nil {
			best = &candidate
			bestServing = serving
		}
	}
	if best == nil {
		return domain.NutritionLookupResult{}, false
	}

	best.Facts = scaleForQuantity(best.Facts, bestServing, quantity, unit)
	return *best, true
}

// scaleForQuantity applies the linear gram scaling rule: only when the item
// quantity denotes grams and the source serving is the 100g baseline.
func scaleForQuantity(facts domain.NutritionFacts, servingGrams float64, quantity, unit string) domain.NutritionFacts {
	if servingGrams != 100 || !nutrition.IsGramUnit(unit) {
		return facts
	}
	grams, ok := nutrition.ParseQuantity(quantity)
	if !ok {
		return facts
	}
	return facts.Scale(grams / 100)
}

func cacheKey(name, quantity, unit string) string {
	normalize := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	u := normalize(unit)
	if u == "" {
		u = domain.DefaultUnit
	}
	return normalize(name) + "|" + normalize(quantity) + "|" + u
}
