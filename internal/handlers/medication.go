package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zxiaoiegw/pill-reminder/internal/middleware"
	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

type medicationRepository interface {
	Create(ctx context.Context, m *models.Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Medication, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Medication, error)
	Update(ctx context.Context, m *models.Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MedicationHandler struct {
	medRepo medicationRepository
}

func NewMedicationHandler(medRepo medicationRepository) *MedicationHandler {
	return &MedicationHandler{medRepo: medRepo}
}

var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func validateSchedule(s models.Schedule) map[string]string {
	fields := make(map[string]string)

	switch s.Frequency {
	case "daily", "twice_daily", "weekly", "as_needed":
	default:
		fields["schedule.frequency"] = "Frequency must be daily, twice_daily, weekly, or as_needed"
	}

	if s.Frequency != "as_needed" && len(s.Times) == 0 {
		fields["schedule.times"] = "At least one time of day is required"
	}
	for _, t := range s.Times {
		if !timeOfDayRegex.MatchString(t) {
			fields["schedule.times"] = "Times must be HH:MM in 24-hour format"
			break
		}
	}

	return fields
}

func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateMedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := validateSchedule(req.Schedule)
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required"
	}
	if strings.TrimSpace(req.Dosage) == "" {
		fields["dosage"] = "Dosage is required"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	med := &models.Medication{
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Dosage:   strings.TrimSpace(req.Dosage),
		Schedule: req.Schedule,
		Notes:    req.Notes,
		IsActive: true,
	}

	if err := h.medRepo.Create(r.Context(), med); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create medication", r))
		return
	}

	writeJSON(w, http.StatusCreated, med)
}

func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	meds, err := h.medRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list medications", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"medications": meds})
}

func (h *MedicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	med, ok := h.ownedMedication(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, med)
}

func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	med, ok := h.ownedMedication(w, r)
	if !ok {
		return
	}

	var req models.UpdateMedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		med.Name = strings.TrimSpace(*req.Name)
	}
	if req.Dosage != nil && strings.TrimSpace(*req.Dosage) != "" {
		med.Dosage = strings.TrimSpace(*req.Dosage)
	}
	if req.Schedule != nil {
		if fields := validateSchedule(*req.Schedule); len(fields) > 0 {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
			return
		}
		med.Schedule = *req.Schedule
	}
	if req.Notes != nil {
		med.Notes = req.Notes
	}
	if req.IsActive != nil {
		med.IsActive = *req.IsActive
	}

	if err := h.medRepo.Update(r.Context(), med); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update medication", r))
		return
	}

	writeJSON(w, http.StatusOK, med)
}

func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	med, ok := h.ownedMedication(w, r)
	if !ok {
		return
	}

	if err := h.medRepo.Delete(r.Context(), med.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete medication", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Medication deleted"})
}

// ownedMedication loads the medication in the URL and verifies ownership.
func (h *MedicationHandler) ownedMedication(w http.ResponseWriter, r *http.Request) (*models.Medication, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid medication ID", r))
		return nil, false
	}

	med, err := h.medRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Medication not found", r))
		return nil, false
	}

	if med.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return nil, false
	}

	return med, true
}
