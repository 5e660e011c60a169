package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zxiaoiegw/pill-reminder/internal/assistant"
	"github.com/zxiaoiegw/pill-reminder/internal/middleware"
	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

type intakeLogRepository interface {
	Create(ctx context.Context, entry *models.IntakeLog) error
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.IntakeLog, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

type IntakeLogHandler struct {
	logRepo intakeLogRepository
	medRepo medicationRepository
}

func NewIntakeLogHandler(logRepo intakeLogRepository, medRepo medicationRepository) *IntakeLogHandler {
	return &IntakeLogHandler{logRepo: logRepo, medRepo: medRepo}
}

func (h *IntakeLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.LogIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if !models.ValidIntakeStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Status must be taken, missed, or skipped", r))
		return
	}

	med, err := h.medRepo.GetByID(r.Context(), req.MedicationID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Medication not found", r))
		return
	}
	if med.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	takenAt := time.Now()
	if req.TakenAt != nil {
		takenAt = *req.TakenAt
	}

	entry := &models.IntakeLog{
		UserID:         userID,
		MedicationID:   med.ID,
		MedicationName: med.Name,
		Status:         req.Status,
		TakenAt:        takenAt,
	}

	if err := h.logRepo.Create(r.Context(), entry); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to record intake", r))
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// List returns the user's log entries over the trailing N days (default 30,
// capped at 365).
func (h *IntakeLogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 365 {
			days = n
		}
	}

	entries, err := h.logRepo.ListSince(r.Context(), userID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list intake logs", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": entries})
}

func (h *IntakeLogHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	now := time.Now()

	entries, err := h.logRepo.ListSince(r.Context(), userID, now.AddDate(0, 0, -1))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list intake logs", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": assistant.TodayEntries(entries, now)})
}

func (h *IntakeLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid log ID", r))
		return
	}

	if err := h.logRepo.Delete(r.Context(), id, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete log entry", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Log entry deleted"})
}
