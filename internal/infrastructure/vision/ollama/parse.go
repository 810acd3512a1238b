package ollama

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

type rawItem struct {
	Name        string          `json:"name"`
	Quantity    json.RawMessage `json:"quantity"`
	Unit        string          `json:"unit"`
	Preparation string          `json:"preparation"`
	Confidence  string          `json:"confidence"`
}

// ParseRecognitionResponse normalizes free-form model output into recognized
// items. Malformed entries are dropped rather than propagated; a response
// that is not list-shaped, or is empty after filtering, yields a failure
// result carrying one synthetic placeholder item.
func ParseRecognitionResponse(raw string) domain.RecognitionResult {
	listText, ok := extractJSONArray(raw)
	if !ok {
		return failureResult(fmt.Sprintf("recognition response is not a list: %.120s", strings.TrimSpace(raw)))
	}

	var rawItems []rawItem
	if err := json.Unmarshal([]byte(listText), &rawItems); err != nil {
		return failureResult(fmt.Sprintf("parse recognition items: %v", err))
	}

	items := make([]domain.RecognizedItem, 0, len(rawItems))
	for _, ri := range rawItems {
		name := strings.TrimSpace(ri.Name)
		if name == "" {
			continue
		}
		items = append(items, domain.RecognizedItem{
			Name:        name,
			Quantity:    quantityString(ri.Quantity),
			Unit:        defaultIfEmpty(ri.Unit, domain.DefaultUnit),
			Preparation: defaultIfEmpty(ri.Preparation, domain.DefaultPreparation),
			Confidence:  normalizeTier(ri.Confidence),
		})
	}
	if len(items) == 0 {
		return failureResult("no usable food items in recognition response")
	}

	return domain.RecognitionResult{
		Success:    true,
		Items:      items,
		Confidence: overallConfidence(items),
	}
}

// extractJSONArray strips surrounding markdown fences and prose, keeping the
// outermost [...] span.
func extractJSONArray(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return cleaned[start : end+1], true
}

// quantityString tolerates both string and numeric quantity values.
func quantityString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strings.TrimSuffix(fmt.Sprintf("%g", n), ".0")
	}
	return ""
}

func normalizeTier(raw string) domain.ConfidenceTier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return domain.TierHigh
	case "medium":
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

// overallConfidence is the mean of per-item tier scores mapped back to a tier.
func overallConfidence(items []domain.RecognizedItem) domain.ConfidenceTier {
	if len(items) == 0 {
		return domain.TierLow
	}
	sum := 0.0
	for _, item := range items {
		sum += domain.TierScore(item.Confidence)
	}
	return domain.TierFromScore(sum / float64(len(items)))
}

func failureResult(message string) domain.RecognitionResult {
	return domain.RecognitionResult{
		Success: false,
		Error:   message,
		Items: []domain.RecognizedItem{{
			Name:        domain.UnidentifiedFood,
			Quantity:    "",
			Unit:        domain.DefaultUnit,
			Preparation: domain.DefaultPreparation,
			Confidence:  domain.TierLow,
			NeedsReview: true,
		}},
		Confidence: domain.TierLow,
	}
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
