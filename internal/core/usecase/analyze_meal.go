package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodlens/meal-vision/internal/core/domain"
	"github.com/foodlens/meal-vision/internal/core/nutrition"
	"github.com/foodlens/meal-vision/internal/core/ports"
)

// AnalyzeMealUseCase sequences the meal-photo pipeline:
// ANALYZE_PHOTO -> SEARCH_NUTRITION -> CALCULATE_TOTALS -> CREATE_MEAL, with
// HANDLE_ERROR as the recovery terminal. Items are resolved strictly one at a
// time; the only cross-run shared state is the nutrition cache inside the
// resolver.
type AnalyzeMealUseCase struct {
	storage    ports.ObjectStorage
	recognizer ports.FoodRecognizer
	resolver   *NutritionResolver
	repo       ports.MealRepository
	logger     *slog.Logger
}

func NewAnalyzeMealUseCase(
	storage ports.ObjectStorage,
	recognizer ports.FoodRecognizer,
	resolver *NutritionResolver,
	repo ports.MealRepository,
	logger *slog.Logger,
) *AnalyzeMealUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeMealUseCase{
		storage:    storage,
		recognizer: recognizer,
		resolver:   resolver,
		repo:       repo,
		logger:     logger,
	}
}

// Analyze runs one pipeline instance. The caller always receives a
// structured result; no failure escapes as an error or panic.
func (uc *AnalyzeMealUseCase) Analyze(ctx context.Context, job domain.AnalysisJob) *domain.MealAnalysisResult {
	st := &domain.PipelineState{
		UserID:     job.UserID,
		DayID:      job.DayID,
		PhotoKey:   job.PhotoKey,
		Category:   job.Category,
		Confidence: domain.TierLow,
	}
	if st.Category == "" {
		st.Category = domain.DefaultCategory
	}

	for stage := domain.StageAnalyzePhoto; stage != domain.StageDone; {
		uc.runStage(ctx, stage, st)
		stage = nextStage(stage, st)
	}

	return buildResult(st)
}

// runStage executes one stage with panic containment at the stage boundary.
func (uc *AnalyzeMealUseCase) runStage(ctx context.Context, stage domain.PipelineStage, st *domain.PipelineState) {
	defer func() {
		if r := recover(); r != nil {
			st.ErrorMessage = fmt.Sprintf("%s: panic: %v", stage, r)
			uc.logger.Error("pipeline_stage_panic", "stage", string(stage), "panic", fmt.Sprint(r))
		}
	}()

	switch stage {
	case domain.StageAnalyzePhoto:
		uc.analyzePhoto(ctx, st)
	case domain.StageSearchNutrition:
		uc.searchNutrition(ctx, st)
	case domain.StageCalculateTotals:
		uc.calculateTotals(st)
	case domain.StageCreateMeal:
		uc.createMeal(ctx, st)
	case domain.StageHandleError:
		uc.handleError(ctx, st)
	}
}

func (uc *AnalyzeMealUseCase) analyzePhoto(ctx context.Context, st *domain.PipelineState) {
	rc, err := uc.storage.Open(ctx, st.PhotoKey)
	if err != nil {
		st.ErrorMessage = fmt.Sprintf("open photo %s: %v", st.PhotoKey, err)
		return
	}
	defer rc.Close()

	image, err := io.ReadAll(rc)
	if err != nil {
		st.ErrorMessage = fmt.Sprintf("read photo %s: %v", st.PhotoKey, err)
		return
	}

	result, err := uc.recognizer.Recognize(ctx, image)
	if err != nil {
		st.ErrorMessage = fmt.Sprintf("photo recognition failed: %v", err)
		return
	}
	if !result.Success || len(result.Items) == 0 {
		// A failed recognition may still carry the synthetic placeholder
		// item; the pipeline does not treat it as a recognized food.
		msg := result.Error
		if msg == "" {
			msg = "no food items recognized on photo"
		}
		st.ErrorMessage = msg
		return
	}

	st.Items = result.Items
	st.Confidence = result.Confidence
}

func (uc *AnalyzeMealUseCase) searchNutrition(ctx context.Context, st *domain.PipelineState) {
	// Strictly sequential: item i completes (including its cache insert)
	// before item i+1 starts.
	st.Entries = make([]domain.NutritionEntry, 0, len(st.Items))
	for _, item := range st.Items {
		result := uc.resolver.Resolve(ctx, item.Name, item.Quantity, item.Unit)
		if !result.Found {
			st.FallbackNeeded = append(st.FallbackNeeded, item.Name)
			uc.logger.Warn("nutrition_lookup_unresolved", "item", item.Name)
		}
		st.Entries = append(st.Entries, domain.NutritionEntry{
			Name:       item.Name,
			Facts:      result.Facts,
			Source:     result.Source,
			Confidence: result.Confidence,
			Fallback:   !result.Found,
		})
	}
}

func (uc *AnalyzeMealUseCase) calculateTotals(st *domain.PipelineState) {
	totals, err := aggregateTotals(st.Entries)
	if err != nil {
		st.ErrorMessage = fmt.Sprintf("calculate totals: %v", err)
		return
	}
	st.Totals = totals
}

func (uc *AnalyzeMealUseCase) createMeal(ctx context.Context, st *domain.PipelineState) {
	meal := uc.buildMealRecord(st, domain.MealStatusCompleted)
	items := buildItemRecords(meal.ID, st)

	if err := uc.repo.CreateMealWithItems(ctx, meal, items); err != nil {
		// One transactional write already failed; no further write is
		// attempted. The failure is reported directly.
		st.Success = false
		st.ErrorMessage = fmt.Sprintf("persist meal: %v", err)
		uc.logger.Error("meal_persist_failed", "day_id", st.DayID, "error", err)
		return
	}

	st.MealID = meal.ID
	st.Success = true
	uc.logger.Info("meal_created", "meal_id", meal.ID, "items", len(items), "calories", st.Totals.Calories)
}

// handleError is the recovery terminal: persist whatever was recognized as a
// needs-review record, best effort, and never raise.
func (uc *AnalyzeMealUseCase) handleError(ctx context.Context, st *domain.PipelineState) {
	st.Success = false
	if len(st.Items) == 0 {
		return
	}

	meal := uc.buildMealRecord(st, domain.MealStatusFailed)
	flagged := make([]domain.RecognizedItem, len(st.Items))
	for i, item := range st.Items {
		item.NeedsReview = true
		flagged[i] = item
	}
	meal.RawItems = flagged
	meal.ErrorMessage = st.ErrorMessage

	if err := uc.repo.CreateFailedMeal(ctx, meal); err != nil {
		// Swallowed: the partial results stay available in memory even
		// when persisting them failed.
		uc.logger.Warn("partial_meal_write_failed", "day_id", st.DayID, "error", err)
		return
	}
	st.MealID = meal.ID
}

func (uc *AnalyzeMealUseCase) buildMealRecord(st *domain.PipelineState, status domain.MealStatus) *domain.MealRecord {
	now := time.Now().UTC()
	var totals domain.NutritionFacts
	if st.Totals != nil {
		totals = *st.Totals
	}
	return &domain.MealRecord{
		ID:         uuid.NewString(),
		UserID:     st.UserID,
		DayID:      st.DayID,
		Category:   st.Category,
		PhotoKey:   st.PhotoKey,
		Status:     status,
		Summary:    buildSummary(st.Items),
		RawItems:   st.Items,
		Totals:     totals,
		Confidence: st.Confidence,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func buildItemRecords(mealID string, st *domain.PipelineState) []domain.MealItemRecord {
	records := make([]domain.MealItemRecord, 0, len(st.Entries))
	for i, entry := range st.Entries {
		quantity := float64(nutrition.DefaultQuantityGrams)
		unit := domain.DefaultUnit
		if i < len(st.Items) {
			quantity = nutrition.QuantityOrDefault(st.Items[i].Quantity)
			if st.Items[i].Unit != "" {
				unit = st.Items[i].Unit
			}
		}
		records = append(records, domain.MealItemRecord{
			ID:          uuid.NewString(),
			MealID:      mealID,
			Name:        entry.Name,
			Quantity:    quantity,
			Unit:        unit,
			Facts:       entry.Facts,
			Source:      entry.Source,
			Confidence:  entry.Confidence,
			NeedsReview: entry.Fallback,
		})
	}
	return records
}

func buildSummary(items []domain.RecognizedItem) string {
	if len(items) == 0 {
		return ""
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return fmt.Sprintf("Recognized %d items: %s", len(items), strings.Join(names, ", "))
}

func buildResult(st *domain.PipelineState) *domain.MealAnalysisResult {
	result := &domain.MealAnalysisResult{
		Success:    st.Success,
		MealID:     st.MealID,
		Error:      st.ErrorMessage,
		Confidence: st.Confidence,
		Items:      st.Items,
		Entries:    st.Entries,
		Totals:     st.Totals,
	}
	if !st.Success && len(st.Items) > 0 {
		result.Partial = &domain.PartialResults{
			Items:          st.Items,
			Entries:        st.Entries,
			FallbackNeeded: st.FallbackNeeded,
			Confidence:     st.Confidence,
		}
	}
	return result
}
