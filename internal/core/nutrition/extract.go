// Package nutrition holds the pure lookup logic shared by the resolver:
// regex fact extraction, source trust tiers, the backup food table and
// quantity parsing.
package nutrition

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

// MinExtractedNutrients is the minimum number of distinct nutrients a
// candidate page must yield to be usable.
const MinExtractedNutrients = 3

// Patterns are tried strictly in order per nutrient; the first match wins.
// Reordering changes extraction outcomes on ambiguous text, so the order is
// pinned by tests.
var nutrientMatchers = []struct {
	name     string
	patterns []*regexp.Regexp
	assign   func(f *domain.NutritionFacts, v float64)
}{
	{
		name: "calories",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`calories[:\s]\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:kcal|calories|cal)\b`),
			regexp.MustCompile(`energy[:\s]\s*(\d+(?:\.\d+)?)`),
		},
		assign: func(f *domain.NutritionFacts, v float64) { f.Calories = v },
	},
	{
		name: "protein",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`protein[:\s]\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`(\d+(?:\.\d+)?)\s*g(?:rams)?\s*(?:of\s+)?protein`),
		},
		assign: func(f *domain.NutritionFacts, v float64) { f.Protein = v },
	},
	{
		name: "carbs",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:total\s+)?carbohydrates?[:\s]\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`carbs[:\s]\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`(\d+(?:\.\d+)?)\s*g(?:rams)?\s*(?:of\s+)?carb(?:ohydrate)?s?\b`),
		},
		assign: func(f *domain.NutritionFacts, v float64) { f.Carbs = v },
	},
	{
		name: "fat",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:total\s+)?fat[:\s]\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`(\d+(?:\.\d+)?)\s*g(?:rams)?\s*(?:of\s+)?fat\b`),
		},
		assign: func(f *domain.NutritionFacts, v float64) { f.Fat = v },
	},
	{
		name: "fiber",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:dietary\s+)?fiber[:\s]\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`fibre[:\s]\s*(\d+(?:\.\d+)?)`),
		},
		assign: func(f *domain.NutritionFacts, v float64) { f.Fiber = v },
	},
	{
		name: "sugar",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`sugars?[:\s]\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`(\d+(?:\.\d+)?)\s*g(?:rams)?\s*(?:of\s+)?sugars?\b`),
		},
		assign: func(f *domain.NutritionFacts, v float64) { f.Sugar = v },
	},
	{
		name: "sodium",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`sodium[:\s]\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`salt[:\s]\s*(\d+(?:\.\d+)?)`),
		},
		assign: func(f *domain.NutritionFacts, v float64) { f.Sodium = v },
	},
}

// ExtractFacts pulls nutrient values out of free-form source text. The text
// is lowercased before matching. Returns the facts and the number of
// distinct nutrients that matched.
func ExtractFacts(text string) (domain.NutritionFacts, int) {
	lowered := strings.ToLower(text)

	var facts domain.NutritionFacts
	extracted := 0
	for _, matcher := range nutrientMatchers {
		for _, pattern := range matcher.patterns {
			m := pattern.FindStringSubmatch(lowered)
			if m == nil {
				continue
			}
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			matcher.assign(&facts, v)
			extracted++
			break
		}
	}
	return facts, extracted
}

var servingSizePattern = regexp.MustCompile(`serving\s+size[:\s]\s*(\d+(?:\.\d+)?)\s*g`)

// ServingGrams reports the serving size the source text describes.
// Defaults to 100 when the text gives no explicit serving.
func ServingGrams(text string) float64 {
	lowered := strings.ToLower(text)
	if m := servingSizePattern.FindStringSubmatch(lowered); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			return v
		}
	}
	return 100
}
