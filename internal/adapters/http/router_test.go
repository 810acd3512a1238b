package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

type ingestorFake struct {
	job *domain.AnalysisJob
	err error

	userID   string
	dayID    string
	category string
	filename string
}

func (f *ingestorFake) Upload(_ context.Context, userID, dayID, category, filename string, _ io.Reader) (*domain.AnalysisJob, error) {
	f.userID, f.dayID, f.category, f.filename = userID, dayID, category, filename
	if f.err != nil {
		return nil, f.err
	}
	return f.job, nil
}

type analyzerFake struct {
	result *domain.MealAnalysisResult
}

func (f *analyzerFake) Analyze(context.Context, domain.AnalysisJob) *domain.MealAnalysisResult {
	return f.result
}

type readerFake struct {
	meal  *domain.MealRecord
	items []domain.MealItemRecord
	meals []domain.MealRecord
	err   error
}

func (f *readerFake) GetByID(context.Context, string) (*domain.MealRecord, []domain.MealItemRecord, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.meal, f.items, nil
}

func (f *readerFake) ListByDay(context.Context, string, string) ([]domain.MealRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.meals, nil
}

func newTestHandler(ingest *ingestorFake, analyzer *analyzerFake, reader *readerFake) http.Handler {
	if ingest == nil {
		ingest = &ingestorFake{}
	}
	if analyzer == nil {
		analyzer = &analyzerFake{result: &domain.MealAnalysisResult{}}
	}
	if reader == nil {
		reader = &readerFake{}
	}
	return NewRouter(ingest, analyzer, reader).Handler()
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(nil, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected a generated request id header")
	}
}

func TestUploadPhotoAccepted(t *testing.T) {
	ingest := &ingestorFake{job: &domain.AnalysisJob{
		UserID:      "u-1",
		DayID:       "d-1",
		PhotoKey:    "abc_dinner.jpg",
		Category:    "dinner",
		RequestedAt: time.Now().UTC(),
	}}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "dinner.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("jpeg-bytes")); err != nil {
		t.Fatal(err)
	}
	_ = writer.WriteField("user_id", "u-1")
	_ = writer.WriteField("day_id", "d-1")
	_ = writer.WriteField("category", "dinner")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/meals/photo", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	newTestHandler(ingest, nil, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if ingest.userID != "u-1" || ingest.dayID != "d-1" || ingest.category != "dinner" || ingest.filename != "dinner.jpg" {
		t.Errorf("ingest args = %q %q %q %q", ingest.userID, ingest.dayID, ingest.category, ingest.filename)
	}

	var job domain.AnalysisJob
	if err := json.NewDecoder(rec.Body).Decode(&job); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if job.PhotoKey != "abc_dinner.jpg" {
		t.Errorf("photo key = %q", job.PhotoKey)
	}
}

func TestUploadPhotoMissingFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/meals/photo", strings.NewReader("no multipart"))
	rec := httptest.NewRecorder()

	newTestHandler(nil, nil, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadPhotoInvalidInputMapsTo400(t *testing.T) {
	ingest := &ingestorFake{err: domain.WrapError(domain.ErrInvalidInput, "upload meal photo", errors.New("user id and day id are required"))}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("photo", "x.jpg")
	_, _ = part.Write([]byte("x"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/meals/photo", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	newTestHandler(ingest, nil, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeSyncReturnsResult(t *testing.T) {
	analyzer := &analyzerFake{result: &domain.MealAnalysisResult{
		Success:    true,
		MealID:     "meal-1",
		Confidence: domain.TierHigh,
		Totals:     &domain.NutritionFacts{Calories: 260},
	}}

	payload := `{"user_id":"u-1","day_id":"d-1","photo_key":"photo.jpg"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/meals/analyze", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	newTestHandler(nil, analyzer, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var result domain.MealAnalysisResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !result.Success || result.MealID != "meal-1" {
		t.Fatalf("result = %+v", result)
	}
}

func TestAnalyzeSyncValidatesBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/meals/analyze", strings.NewReader(`{"user_id":"u-1"}`))
	rec := httptest.NewRecorder()

	newTestHandler(nil, nil, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetMealByID(t *testing.T) {
	reader := &readerFake{
		meal:  &domain.MealRecord{ID: "meal-1", Status: domain.MealStatusCompleted},
		items: []domain.MealItemRecord{{ID: "item-1", MealID: "meal-1", Name: "rice"}},
	}
	rec := httptest.NewRecorder()

	newTestHandler(nil, nil, reader).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/meals/meal-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Meal  domain.MealRecord       `json:"meal"`
		Items []domain.MealItemRecord `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Meal.ID != "meal-1" || len(body.Items) != 1 {
		t.Fatalf("body = %+v", body)
	}
}

func TestGetMealByIDNotFoundMapsTo404(t *testing.T) {
	reader := &readerFake{err: domain.WrapError(domain.ErrMealNotFound, "get meal", errors.New("id missing"))}
	rec := httptest.NewRecorder()

	newTestHandler(nil, nil, reader).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/meals/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListMealsRequiresUserAndDay(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(nil, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/meals?user_id=u-1", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListMealsEmptyDayIsEmptyList(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(nil, nil, &readerFake{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/v1/meals?user_id=u-1&day_id=d-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Meals []domain.MealRecord `json:"meals"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Meals == nil || len(body.Meals) != 0 {
		t.Fatalf("meals = %+v, want empty list", body.Meals)
	}
}

func TestLoggingMiddlewarePassesThroughFlush(t *testing.T) {
	handler := loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer lost http.Flusher")
		}
		_, _ = w.Write([]byte("chunk"))
		f.Flush()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !rec.Flushed {
		t.Error("expected flush to reach the underlying writer")
	}
}

func TestDailyReportReturnsWorkbook(t *testing.T) {
	reader := &readerFake{meals: []domain.MealRecord{{
		ID: "meal-1", Category: "lunch", Status: domain.MealStatusCompleted,
		Totals: domain.NutritionFacts{Calories: 260, Protein: 5.4},
	}}}
	rec := httptest.NewRecorder()

	newTestHandler(nil, nil, reader).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/v1/reports/daily?user_id=u-1&day_id=d-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q, want xlsx", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "meals-d-1.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected workbook bytes")
	}
}
