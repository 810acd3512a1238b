package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodlens/meal-vision/internal/core/domain"
	"github.com/foodlens/meal-vision/internal/core/ports"
)

// IngestMealPhotoUseCase stores an uploaded photo and enqueues its analysis.
// The meal record itself is created later by the pipeline, at whichever
// terminal stage performs a write.
type IngestMealPhotoUseCase struct {
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestMealPhotoUseCase(storage ports.ObjectStorage, queue ports.MessageQueue) *IngestMealPhotoUseCase {
	return &IngestMealPhotoUseCase{storage: storage, queue: queue}
}

func (uc *IngestMealPhotoUseCase) Upload(
	ctx context.Context,
	userID, dayID, category, filename string,
	body io.Reader,
) (*domain.AnalysisJob, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(dayID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload meal photo", errors.New("user id and day id are required"))
	}
	if category == "" {
		category = domain.DefaultCategory
	}

	key := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, key, body); err != nil {
		return nil, fmt.Errorf("save photo to object storage: %w", err)
	}

	job := domain.AnalysisJob{
		UserID:      userID,
		DayID:       dayID,
		PhotoKey:    key,
		Category:    category,
		RequestedAt: time.Now().UTC(),
	}
	if err := uc.queue.PublishAnalysisRequested(ctx, job); err != nil {
		return nil, fmt.Errorf("publish analysis job: %w", err)
	}
	return &job, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "photo.jpg"
	}
	return base
}
