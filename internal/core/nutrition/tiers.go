package nutrition

import (
	"net/url"
	"strings"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

// Government/academic sources are trusted outright.
var authoritativeSuffixes = []string{
	".gov",
	".edu",
	"who.int",
}

// Known nutrition-tracking sites get a medium tier.
var trackerDomains = []string{
	"nutritionix.com",
	"myfitnesspal.com",
	"fatsecret.com",
	"cronometer.com",
	"eatthismuch.com",
	"verywellfit.com",
}

// SourceTier assigns a confidence tier from the candidate URL alone.
func SourceTier(rawURL string) domain.ConfidenceTier {
	host := hostOf(rawURL)
	if host == "" {
		return domain.TierLow
	}
	for _, suffix := range authoritativeSuffixes {
		if strings.HasSuffix(host, suffix) {
			return domain.TierHigh
		}
	}
	for _, d := range trackerDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return domain.TierMedium
		}
	}
	return domain.TierLow
}

// AllowedDomains is the fixed allow-list handed to the search capability.
func AllowedDomains() []string {
	return []string{
		"fdc.nal.usda.gov",
		"usda.gov",
		"nih.gov",
		"who.int",
		"nutritionix.com",
		"myfitnesspal.com",
		"fatsecret.com",
		"cronometer.com",
		"eatthismuch.com",
		"verywellfit.com",
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
