package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/zxiaoiegw/pill-reminder/internal/assistant"
	"github.com/zxiaoiegw/pill-reminder/internal/middleware"
	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

type DashboardHandler struct {
	medRepo medicationRepository
	logRepo intakeLogRepository
}

func NewDashboardHandler(medRepo medicationRepository, logRepo intakeLogRepository) *DashboardHandler {
	return &DashboardHandler{medRepo: medRepo, logRepo: logRepo}
}

// Stats returns the 30-day adherence summary plus medication counts.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	now := time.Now()

	meds, err := h.medRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load medications", r))
		return
	}

	entries, err := h.logRepo.ListSince(r.Context(), userID, now.AddDate(0, 0, -30))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load intake logs", r))
		return
	}

	active := 0
	for _, med := range meds {
		if med.IsActive {
			active++
		}
	}

	stats := assistant.ComputeAdherence(entries, now)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"medications":        len(meds),
		"active_medications": active,
		"adherence":          stats,
		"today_logged":       len(assistant.TodayEntries(entries, now)),
	})
}

// Today lists every dose scheduled today with its logged status, so the
// dashboard can show what is taken, due, or missed.
func (h *DashboardHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	now := time.Now()

	meds, err := h.medRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load medications", r))
		return
	}

	entries, err := h.logRepo.ListSince(r.Context(), userID, now.AddDate(0, 0, -1))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load intake logs", r))
		return
	}
	logged := assistant.TodayEntries(entries, now)

	type doseStatus struct {
		MedicationID   string `json:"medication_id"`
		MedicationName string `json:"medication_name"`
		Dosage         string `json:"dosage"`
		ScheduledTime  string `json:"scheduled_time"`
		Status         string `json:"status"` // "taken" | "missed" | "skipped" | "due"
	}

	var doses []doseStatus
	for _, med := range meds {
		if !med.IsActive {
			continue
		}

		// Each log entry binds to its nearest scheduled slot, and each slot
		// takes at most one entry. A single evening log must not mark an
		// untaken morning dose as taken.
		slotStatus := make(map[string]string)
		for _, entry := range logged {
			if entry.MedicationName != med.Name {
				continue
			}
			slot := nearestSlot(med.Schedule.Times, entry.Time)
			if slot == "" {
				continue
			}
			if _, occupied := slotStatus[slot]; !occupied {
				slotStatus[slot] = entry.Status
			}
		}

		for _, t := range med.Schedule.Times {
			status := "due"
			if s, ok := slotStatus[t]; ok {
				status = s
			}
			doses = append(doses, doseStatus{
				MedicationID:   med.ID.String(),
				MedicationName: med.Name,
				Dosage:         med.Dosage,
				ScheduledTime:  t,
				Status:         status,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"doses": doses})
}

// nearestSlot returns the "HH:MM" scheduled time closest to when the entry
// was logged.
func nearestSlot(times []string, at time.Time) string {
	logged := at.Hour()*60 + at.Minute()

	best := ""
	bestDiff := 0
	for _, t := range times {
		if len(t) != 5 {
			continue
		}
		h, err1 := strconv.Atoi(t[:2])
		m, err2 := strconv.Atoi(t[3:])
		if err1 != nil || err2 != nil {
			continue
		}
		diff := logged - (h*60 + m)
		if diff < 0 {
			diff = -diff
		}
		if best == "" || diff < bestDiff {
			best = t
			bestDiff = diff
		}
	}
	return best
}

// Adherence returns the per-medication adherence breakdown for the reports
// page, over a trailing window of N days (default 30).
func (h *DashboardHandler) Adherence(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	now := time.Now()

	entries, err := h.logRepo.ListSince(r.Context(), userID, now.AddDate(0, 0, -30))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load intake logs", r))
		return
	}

	type medStats struct {
		MedicationName string `json:"medication_name"`
		Scheduled      int    `json:"scheduled"`
		Taken          int    `json:"taken"`
		Missed         int    `json:"missed"`
		Skipped        int    `json:"skipped"`
	}

	byMed := make(map[string]*medStats)
	order := []string{}
	for _, entry := range entries {
		s, ok := byMed[entry.MedicationName]
		if !ok {
			s = &medStats{MedicationName: entry.MedicationName}
			byMed[entry.MedicationName] = s
			order = append(order, entry.MedicationName)
		}
		s.Scheduled++
		switch entry.Status {
		case models.IntakeStatusTaken:
			s.Taken++
		case models.IntakeStatusMissed:
			s.Missed++
		case models.IntakeStatusSkipped:
			s.Skipped++
		}
	}

	breakdown := make([]medStats, 0, len(order))
	for _, name := range order {
		breakdown = append(breakdown, *byMed[name])
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"overall":     assistant.ComputeAdherence(entries, now),
		"by_med":      breakdown,
		"window_days": 30,
	})
}
