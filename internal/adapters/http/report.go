package httpadapter

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

// dailyReport renders the day's meals as an xlsx workbook.
func (rt *Router) dailyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	userID := r.URL.Query().Get("user_id")
	dayID := r.URL.Query().Get("day_id")
	if userID == "" || dayID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and day_id are required"})
		return
	}

	meals, err := rt.meals.ListByDay(r.Context(), userID, dayID)
	if err != nil {
		writeError(w, err)
		return
	}

	book, err := buildDailyWorkbook(dayID, meals)
	if err != nil {
		writeError(w, err)
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="meals-%s.xlsx"`, dayID))
	if err := book.Write(w); err != nil {
		slog.Warn("daily_report_write_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

func buildDailyWorkbook(dayID string, meals []domain.MealRecord) (*excelize.File, error) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)

	header := []any{"Category", "Status", "Summary", "Calories", "Protein", "Carbs", "Fat", "Fiber", "Sugar", "Sodium"}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write report header: %w", err)
	}

	var total domain.NutritionFacts
	for i, meal := range meals {
		row := []any{
			meal.Category,
			string(meal.Status),
			meal.Summary,
			meal.Totals.Calories,
			meal.Totals.Protein,
			meal.Totals.Carbs,
			meal.Totals.Fat,
			meal.Totals.Fiber,
			meal.Totals.Sugar,
			meal.Totals.Sodium,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write report row: %w", err)
		}
		total = total.Add(meal.Totals)
	}

	total = total.Round2()
	totalRow := []any{
		"Total for " + dayID, "", "",
		total.Calories, total.Protein, total.Carbs, total.Fat,
		total.Fiber, total.Sugar, total.Sodium,
	}
	cell := fmt.Sprintf("A%d", len(meals)+2)
	if err := book.SetSheetRow(sheet, cell, &totalRow); err != nil {
		return nil, fmt.Errorf("write report totals: %w", err)
	}

	return book, nil
}
