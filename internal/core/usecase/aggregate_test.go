package usecase

import (
	"math"
	"testing"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

func TestAggregateTotalsSumsAndRounds(t *testing.T) {
	entries := []domain.NutritionEntry{
		{Name: "chicken breast", Facts: domain.NutritionFacts{Calories: 330, Protein: 62, Fat: 7.2}},
		{Name: "rice", Facts: domain.NutritionFacts{Calories: 260, Protein: 5.4, Carbs: 56, Fat: 0.6}},
		{Name: "unresolved", Facts: domain.NutritionFacts{}},
	}

	totals, err := aggregateTotals(entries)
	if err != nil {
		t.Fatalf("aggregateTotals: %v", err)
	}
	if totals.Calories != 590 {
		t.Errorf("calories = %v, want 590", totals.Calories)
	}
	if totals.Protein != 67.4 {
		t.Errorf("protein = %v, want 67.4", totals.Protein)
	}
	if totals.Carbs != 56 {
		t.Errorf("carbs = %v, want 56", totals.Carbs)
	}
	if totals.Fat != 7.8 {
		t.Errorf("fat = %v, want 7.8", totals.Fat)
	}
}

func TestAggregateTotalsOrderIndependent(t *testing.T) {
	a := []domain.NutritionEntry{
		{Facts: domain.NutritionFacts{Calories: 100.005, Protein: 1.115}},
		{Facts: domain.NutritionFacts{Calories: 200.003, Protein: 2.225}},
	}
	b := []domain.NutritionEntry{a[1], a[0]}

	ta, err := aggregateTotals(a)
	if err != nil {
		t.Fatalf("aggregateTotals(a): %v", err)
	}
	tb, err := aggregateTotals(b)
	if err != nil {
		t.Fatalf("aggregateTotals(b): %v", err)
	}
	if *ta != *tb {
		t.Fatalf("totals depend on order: %+v vs %+v", ta, tb)
	}
}

func TestAggregateTotalsEmptyListIsZero(t *testing.T) {
	totals, err := aggregateTotals([]domain.NutritionEntry{})
	if err != nil {
		t.Fatalf("aggregateTotals: %v", err)
	}
	if *totals != (domain.NutritionFacts{}) {
		t.Fatalf("totals = %+v, want zero", totals)
	}
}

func TestAggregateTotalsNilListFails(t *testing.T) {
	if _, err := aggregateTotals(nil); err == nil {
		t.Fatal("expected error for nil entries")
	}
}

func TestAggregateTotalsSanitizesNonFinite(t *testing.T) {
	entries := []domain.NutritionEntry{
		{Facts: domain.NutritionFacts{Calories: math.NaN(), Protein: math.Inf(1)}},
		{Facts: domain.NutritionFacts{Calories: 50}},
	}
	totals, err := aggregateTotals(entries)
	if err != nil {
		t.Fatalf("aggregateTotals: %v", err)
	}
	if totals.Calories != 50 || totals.Protein != 0 {
		t.Fatalf("totals = %+v, want calories 50 protein 0", totals)
	}
}
