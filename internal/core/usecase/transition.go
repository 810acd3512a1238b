package usecase

import "github.com/foodlens/meal-vision/internal/core/domain"

// nextStage is the pure transition function of the analysis state machine.
// It inspects only the accumulated pipeline state, never side effects, so the
// routing is testable in isolation.
//
//	ANALYZE_PHOTO    -> SEARCH_NUTRITION | HANDLE_ERROR
//	SEARCH_NUTRITION -> CALCULATE_TOTALS (per-item failures are absorbed)
//	CALCULATE_TOTALS -> CREATE_MEAL | HANDLE_ERROR
//	CREATE_MEAL      -> DONE
//	HANDLE_ERROR     -> DONE
func nextStage(current domain.PipelineStage, st *domain.PipelineState) domain.PipelineStage {
	switch current {
	case domain.StageAnalyzePhoto:
		if st.ErrorMessage != "" || len(st.Items) == 0 {
			return domain.StageHandleError
		}
		return domain.StageSearchNutrition
	case domain.StageSearchNutrition:
		return domain.StageCalculateTotals
	case domain.StageCalculateTotals:
		if st.ErrorMessage != "" || st.Totals == nil {
			return domain.StageHandleError
		}
		return domain.StageCreateMeal
	default:
		return domain.StageDone
	}
}
