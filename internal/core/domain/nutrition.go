package domain

import "math"

type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// TierScore maps a tier to its numeric weight for averaging.
func TierScore(tier ConfidenceTier) float64 {
	switch tier {
	case TierHigh:
		return 3
	case TierMedium:
		return 2
	default:
		return 1
	}
}

// TierFromScore maps a mean score back to a tier: >=2.5 high, >=1.5 medium.
func TierFromScore(score float64) ConfidenceTier {
	switch {
	case score >= 2.5:
		return TierHigh
	case score >= 1.5:
		return TierMedium
	default:
		return TierLow
	}
}

// NutritionFacts is always fully populated; unresolved fields stay 0.
type NutritionFacts struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Sodium   float64 `json:"sodium"`
}

func (f NutritionFacts) Add(other NutritionFacts) NutritionFacts {
	return NutritionFacts{
		Calories: f.Calories + sanitize(other.Calories),
		Protein:  f.Protein + sanitize(other.Protein),
		Carbs:    f.Carbs + sanitize(other.Carbs),
		Fat:      f.Fat + sanitize(other.Fat),
		Fiber:    f.Fiber + sanitize(other.Fiber),
		Sugar:    f.Sugar + sanitize(other.Sugar),
		Sodium:   f.Sodium + sanitize(other.Sodium),
	}
}

// Scale multiplies every nutrient by factor, rounding to 1 decimal.
func (f NutritionFacts) Scale(factor float64) NutritionFacts {
	return NutritionFacts{
		Calories: round1(f.Calories * factor),
		Protein:  round1(f.Protein * factor),
		Carbs:    round1(f.Carbs * factor),
		Fat:      round1(f.Fat * factor),
		Fiber:    round1(f.Fiber * factor),
		Sugar:    round1(f.Sugar * factor),
		Sodium:   round1(f.Sodium * factor),
	}
}

// Round2 rounds every nutrient to 2 decimals, used for meal totals.
func (f NutritionFacts) Round2() NutritionFacts {
	return NutritionFacts{
		Calories: round2(f.Calories),
		Protein:  round2(f.Protein),
		Carbs:    round2(f.Carbs),
		Fat:      round2(f.Fat),
		Fiber:    round2(f.Fiber),
		Sugar:    round2(f.Sugar),
		Sodium:   round2(f.Sodium),
	}
}

const (
	SourceEstimated = "estimated"
	SourceNone      = "none"
)

// NutritionLookupResult is the resolver output for a single food item.
type NutritionLookupResult struct {
	Found      bool           `json:"found"`
	Facts      NutritionFacts `json:"facts"`
	Source     string         `json:"source"`
	Confidence ConfidenceTier `json:"confidence"`
}

// SearchHit is one candidate nutrition source returned by the search capability.
type SearchHit struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(sanitize(v)*10) / 10
}

func round2(v float64) float64 {
	return math.Round(sanitize(v)*100) / 100
}
