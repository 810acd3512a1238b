package domain

// PipelineStage names one state of the meal analysis state machine.
type PipelineStage string

const (
	StageAnalyzePhoto    PipelineStage = "ANALYZE_PHOTO"
	StageSearchNutrition PipelineStage = "SEARCH_NUTRITION"
	StageCalculateTotals PipelineStage = "CALCULATE_TOTALS"
	StageCreateMeal      PipelineStage = "CREATE_MEAL"
	StageHandleError     PipelineStage = "HANDLE_ERROR"
	StageDone            PipelineStage = "DONE"
)

// NutritionEntry is one resolved item carried through the pipeline.
type NutritionEntry struct {
	Name       string         `json:"name"`
	Facts      NutritionFacts `json:"facts"`
	Source     string         `json:"source"`
	Confidence ConfidenceTier `json:"confidence"`
	Fallback   bool           `json:"fallback,omitempty"`
}

// PipelineState is the per-run record threaded through pipeline stages. It is
// created per invocation and discarded once the result is built.
type PipelineState struct {
	UserID   string
	DayID    string
	PhotoKey string
	Category string

	Items          []RecognizedItem
	Entries        []NutritionEntry
	FallbackNeeded []string

	Totals       *NutritionFacts
	MealID       string
	Success      bool
	ErrorMessage string
	Confidence   ConfidenceTier
}

// PartialResults snapshots whatever the run produced before failing, so a
// failed run stays inspectable for manual completion.
type PartialResults struct {
	Items          []RecognizedItem `json:"items"`
	Entries        []NutritionEntry `json:"entries"`
	FallbackNeeded []string         `json:"fallback_needed,omitempty"`
	Confidence     ConfidenceTier   `json:"confidence"`
}

// MealAnalysisResult is the structured terminal outcome; the caller receives
// one regardless of how the run ended.
type MealAnalysisResult struct {
	Success    bool             `json:"success"`
	MealID     string           `json:"meal_id,omitempty"`
	Error      string           `json:"error,omitempty"`
	Confidence ConfidenceTier   `json:"confidence"`
	Items      []RecognizedItem `json:"items"`
	Entries    []NutritionEntry `json:"entries"`
	Totals     *NutritionFacts  `json:"totals,omitempty"`
	Partial    *PartialResults  `json:"partial_results,omitempty"`
}
