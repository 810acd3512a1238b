package domain

import "time"

type MealStatus string

const (
	MealStatusCompleted MealStatus = "completed"
	MealStatusFailed    MealStatus = "failed"
)

const DefaultCategory = "snack"

// MealRecord is the persisted parent record for one analyzed photo.
type MealRecord struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	DayID        string           `json:"day_id"`
	Category     string           `json:"category"`
	PhotoKey     string           `json:"photo_key"`
	Status       MealStatus       `json:"status"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Summary      string           `json:"summary,omitempty"`
	RawItems     []RecognizedItem `json:"raw_items"`
	Totals       NutritionFacts   `json:"totals"`
	Confidence   ConfidenceTier   `json:"confidence"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// MealItemRecord is a child row owned by a MealRecord (cascade delete).
type MealItemRecord struct {
	ID          string         `json:"id"`
	MealID      string         `json:"meal_id"`
	Name        string         `json:"name"`
	Quantity    float64        `json:"quantity"`
	Unit        string         `json:"unit"`
	Facts       NutritionFacts `json:"facts"`
	Source      string         `json:"source"`
	Confidence  ConfidenceTier `json:"confidence"`
	NeedsReview bool           `json:"needs_review"`
}

// AnalysisJob is the queued request to run one pipeline instance.
type AnalysisJob struct {
	UserID      string    `json:"user_id"`
	DayID       string    `json:"day_id"`
	PhotoKey    string    `json:"photo_key"`
	Category    string    `json:"category"`
	RequestedAt time.Time `json:"requested_at"`
}
