package ports

import (
	"context"
	"io"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

// MealRepository persists meal records and their child items.
type MealRepository interface {
	// CreateMealWithItems writes the parent and its children in one
	// transaction. A failed child insert is logged and skipped; a failed
	// parent insert rolls back the whole transaction.
	CreateMealWithItems(ctx context.Context, meal *domain.MealRecord, items []domain.MealItemRecord) error
	// CreateFailedMeal performs the best-effort error-path write.
	CreateFailedMeal(ctx context.Context, meal *domain.MealRecord) error
	GetByID(ctx context.Context, id string) (*domain.MealRecord, []domain.MealItemRecord, error)
	ListByDay(ctx context.Context, userID, dayID string) ([]domain.MealRecord, error)
}

// ObjectStorage stores uploaded meal photos.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes photo analysis jobs.
type MessageQueue interface {
	PublishAnalysisRequested(ctx context.Context, job domain.AnalysisJob) error
	SubscribeAnalysisRequested(ctx context.Context, handler func(context.Context, domain.AnalysisJob) error) error
}

// FoodRecognizer identifies food items on a photo.
type FoodRecognizer interface {
	Recognize(ctx context.Context, image []byte) (domain.RecognitionResult, error)
}

// NutritionSearcher queries the external text-search capability for
// candidate nutrition sources, restricted to trusted domains.
type NutritionSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error)
}

// NutritionCache is the cross-invocation lookup cache. Put is insert-only:
// an existing key is never overwritten.
type NutritionCache interface {
	Get(key string) (domain.NutritionLookupResult, bool)
	Put(key string, result domain.NutritionLookupResult)
}
