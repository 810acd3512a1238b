package nutrition

import "testing"

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"200", 200, true},
		{"  150 grams", 150, true},
		{"2.5", 2.5, true},
		{"approximately 200", 0, false},
		{"", 0, false},
		{"0", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseQuantity(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseQuantity(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestQuantityOrDefault(t *testing.T) {
	if got := QuantityOrDefault("250"); got != 250 {
		t.Errorf("QuantityOrDefault(250) = %v", got)
	}
	if got := QuantityOrDefault("a handful"); got != DefaultQuantityGrams {
		t.Errorf("QuantityOrDefault fallback = %v, want %v", got, DefaultQuantityGrams)
	}
}

func TestIsGramUnit(t *testing.T) {
	for _, unit := range []string{"", "g", "gram", "grams", " Grams "} {
		if !IsGramUnit(unit) {
			t.Errorf("IsGramUnit(%q) = false, want true", unit)
		}
	}
	for _, unit := range []string{"ml", "pieces", "cups", "oz"} {
		if IsGramUnit(unit) {
			t.Errorf("IsGramUnit(%q) = true, want false", unit)
		}
	}
}
