package nutrition

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultQuantityGrams is used for child records when the free-text
// quantity cannot be parsed.
const DefaultQuantityGrams = 100

var leadingNumberPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

// ParseQuantity extracts the leading numeric amount of a free-text quantity.
func ParseQuantity(quantity string) (float64, bool) {
	m := leadingNumberPattern.FindStringSubmatch(quantity)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// QuantityOrDefault parses the quantity, falling back to 100.
func QuantityOrDefault(quantity string) float64 {
	if v, ok := ParseQuantity(quantity); ok {
		return v
	}
	return DefaultQuantityGrams
}

// IsGramUnit reports whether the unit denotes grams. The recognizer defaults
// units to "grams", so an empty unit counts as grams too.
func IsGramUnit(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "g", "gram", "grams":
		return true
	default:
		return false
	}
}
