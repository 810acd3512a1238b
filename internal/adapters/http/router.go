package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/foodlens/meal-vision/internal/core/domain"
	"github.com/foodlens/meal-vision/internal/core/ports"
)

type Router struct {
	ingest   ports.MealPhotoIngestor
	analyzer ports.MealPhotoAnalyzer
	meals    ports.MealReader
}

func NewRouter(ingest ports.MealPhotoIngestor, analyzer ports.MealPhotoAnalyzer, meals ports.MealReader) *Router {
	return &Router{
		ingest:   ingest,
		analyzer: analyzer,
		meals:    meals,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/meals/photo", rt.uploadPhoto)
	mux.HandleFunc("/v1/meals/analyze", rt.analyzeSync)
	mux.HandleFunc("/v1/meals/", rt.getMealByID)
	mux.HandleFunc("/v1/meals", rt.listMeals)
	mux.HandleFunc("/v1/reports/daily", rt.dailyReport)
	return requestIDMiddleware(loggingMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadPhoto stores the photo and enqueues an asynchronous analysis job.
func (rt *Router) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'photo' is required"})
		return
	}
	defer file.Close()

	job, err := rt.ingest.Upload(
		r.Context(),
		r.FormValue("user_id"),
		r.FormValue("day_id"),
		r.FormValue("category"),
		fileHeader.Filename,
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

// analyzeSync runs one pipeline instance inline and returns its structured
// result. The analyzer never fails outright; failures arrive inside the body.
func (rt *Router) analyzeSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var job domain.AnalysisJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if job.PhotoKey == "" || job.DayID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "photo_key and day_id are required"})
		return
	}

	result := rt.analyzer.Analyze(r.Context(), job)
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getMealByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/meals/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "meal id is required"})
		return
	}

	meal, items, err := rt.meals.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"meal":  meal,
		"items": items,
	})
}

func (rt *Router) listMeals(w http.ResponseWriter, r *http.Request) {
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
	if meals == nil {
		meals = []domain.MealRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"meals": meals})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsKind(err, domain.ErrMealNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case domain.IsKind(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case domain.IsKind(err, domain.ErrTemporary):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
