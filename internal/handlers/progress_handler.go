package handlers

import (
	"net/http"
	"strconv"
	"time"

	"playtrack/internal/models"
	"playtrack/internal/security"
	"playtrack/internal/service"
)

// ProgressHandler serves achievements and the derived charts
type ProgressHandler struct {
	progress *service.ProgressService
	reports  *service.ReportService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress *service.ProgressService, reports *service.ReportService) *ProgressHandler {
	return &ProgressHandler{progress: progress, reports: reports}
}

// Register adds the progress routes to mux. Achievement writes go through limiter.
func (h *ProgressHandler) Register(mux *http.ServeMux, limiter *security.RateLimiter) {
	mux.HandleFunc("GET /api/children/{id}/radar", h.Radar)
	mux.HandleFunc("GET /api/children/{id}/categories/{category}", h.Record)
	mux.HandleFunc("GET /api/children/{id}/categories/{category}/timeline", h.Timeline)
	mux.HandleFunc("POST /api/children/{id}/categories/{category}/plays/{playNumber}/levels/{level}",
		RateLimit(limiter, h.SetAchievement))
	mux.HandleFunc("POST /api/children/{id}/report", h.SendReport)
}

type achievementRequest struct {
	Achieved   *bool      `json:"achieved"`
	AchievedAt *time.Time `json:"achievedAt,omitempty"`
}

// Record handles GET /api/children/{id}/categories/{category}
func (h *ProgressHandler) Record(w http.ResponseWriter, r *http.Request) {
	record, err := h.progress.Record(r.PathValue("id"), models.Category(r.PathValue("category")))
	if err != nil {
		respondWithServiceError(w, "Failed to load category record", err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// Timeline handles GET /api/children/{id}/categories/{category}/timeline
func (h *ProgressHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	points, err := h.progress.Timeline(r.PathValue("id"), models.Category(r.PathValue("category")))
	if err != nil {
		respondWithServiceError(w, "Failed to build timeline", err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}

// Radar handles GET /api/children/{id}/radar
func (h *ProgressHandler) Radar(w http.ResponseWriter, r *http.Request) {
	radar, err := h.progress.Radar(r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Failed to build radar", err)
		return
	}
	respondJSON(w, http.StatusOK, radar)
}

// SetAchievement handles POST .../plays/{playNumber}/levels/{level}
func (h *ProgressHandler) SetAchievement(w http.ResponseWriter, r *http.Request) {
	playNumber, err := strconv.Atoi(r.PathValue("playNumber"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid play number", "", nil)
		return
	}
	level, err := strconv.Atoi(r.PathValue("level"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid level", "", nil)
		return
	}

	var req achievementRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "Failed to decode achievement request", err)
		return
	}
	if req.Achieved == nil {
		respondWithError(w, http.StatusBadRequest, "achieved is required", "", nil)
		return
	}

	record, err := h.progress.SetAchievement(r.PathValue("id"), models.Category(r.PathValue("category")), service.AchievementChange{
		PlayNumber: playNumber,
		Level:      level,
		Achieved:   *req.Achieved,
		AchievedAt: req.AchievedAt,
	})
	if err != nil {
		respondWithServiceError(w, "Failed to set achievement", err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// SendReport handles POST /api/children/{id}/report
func (h *ProgressHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	radar, err := h.reports.SendSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Failed to send progress report", err)
		return
	}
	respondJSON(w, http.StatusAccepted, radar)
}
