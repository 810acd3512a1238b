package domain

const (
	DefaultUnit        = "grams"
	DefaultPreparation = "unknown"

	// UnidentifiedFood is the synthetic placeholder name returned when the
	// recognition capability produced nothing usable.
	UnidentifiedFood = "Unidentified food"
)

// RecognizedItem is one food item identified on a photo. Quantity stays
// free-text and is parsed only where a numeric amount is needed.
type RecognizedItem struct {
	Name        string         `json:"name"`
	Quantity    string         `json:"quantity"`
	Unit        string         `json:"unit"`
	Preparation string         `json:"preparation"`
	Confidence  ConfidenceTier `json:"confidence"`
	NeedsReview bool           `json:"needs_review,omitempty"`
}

// RecognitionResult is the normalized recognition adapter output.
type RecognitionResult struct {
	Success    bool             `json:"success"`
	Items      []RecognizedItem `json:"items"`
	Confidence ConfidenceTier   `json:"confidence"`
	Error      string           `json:"error,omitempty"`
}
