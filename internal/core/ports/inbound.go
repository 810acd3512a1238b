package ports

import (
	"context"
	"io"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

// MealPhotoAnalyzer runs one pipeline instance for a photo. It never returns
// an error: every outcome, including failure, arrives as a structured result.
type MealPhotoAnalyzer interface {
	Analyze(ctx context.Context, job domain.AnalysisJob) *domain.MealAnalysisResult
}

// MealPhotoIngestor stores an uploaded photo and enqueues its analysis.
type MealPhotoIngestor interface {
	Upload(ctx context.Context, userID, dayID, category, filename string, body io.Reader) (*domain.AnalysisJob, error)
}

// MealReader is the inbound read model for persisted meals.
type MealReader interface {
	GetByID(ctx context.Context, id string) (*domain.MealRecord, []domain.MealItemRecord, error)
	ListByDay(ctx context.Context, userID, dayID string) ([]domain.MealRecord, error)
}
