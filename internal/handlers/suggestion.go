package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zxiaoiegw/pill-reminder/internal/middleware"
	"github.com/zxiaoiegw/pill-reminder/internal/models"
	"github.com/zxiaoiegw/pill-reminder/internal/repository"
)

const scheduleSuggestionQueue = "queue:schedule-suggestion"

// SuggestionHandler enqueues schedule-suggestion jobs and serves their
// results. The heavy lifting happens in the worker pool.
type SuggestionHandler struct {
	medRepo medicationRepository
	jobRepo *repository.JobRepo
	redis   *redis.Client
}

func NewSuggestionHandler(medRepo medicationRepository, jobRepo *repository.JobRepo, redisClient *redis.Client) *SuggestionHandler {
	return &SuggestionHandler{medRepo: medRepo, jobRepo: jobRepo, redis: redisClient}
}

func (h *SuggestionHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	medID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid medication ID", r))
		return
	}

	med, err := h.medRepo.GetByID(r.Context(), medID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Medication not found", r))
		return
	}
	if med.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	job := &models.Job{
		UserID:      userID,
		Type:        "schedule-suggestion",
		ReferenceID: med.ID,
	}
	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create job", r))
		return
	}

	payload, _ := json.Marshal(job)
	if err := h.redis.RPush(r.Context(), scheduleSuggestionQueue, payload).Err(); err != nil {
		h.jobRepo.Fail(r.Context(), job.ID, "failed to enqueue")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enqueue job", r))
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

func (h *SuggestionHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Job not found", r))
		return
	}

	if job.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	writeJSON(w, http.StatusOK, job)
}
