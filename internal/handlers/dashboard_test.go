package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

type fakeMedRepo struct {
	meds []*models.Medication
}

func (f *fakeMedRepo) Create(ctx context.Context, m *models.Medication) error { return nil }

func (f *fakeMedRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Medication, error) {
	for _, m := range f.meds {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeMedRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Medication, error) {
	return f.meds, nil
}

func (f *fakeMedRepo) Update(ctx context.Context, m *models.Medication) error { return nil }
func (f *fakeMedRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }

type fakeLogRepo struct {
	entries []*models.IntakeLog
}

func (f *fakeLogRepo) Create(ctx context.Context, entry *models.IntakeLog) error { return nil }

func (f *fakeLogRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.IntakeLog, error) {
	return f.entries, nil
}

func (f *fakeLogRepo) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error { return nil }

func todayAt(hour, minute int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
}

func decodeDoses(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var resp struct {
		Doses []struct {
			MedicationName string `json:"medication_name"`
			ScheduledTime  string `json:"scheduled_time"`
			Status         string `json:"status"`
		} `json:"doses"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	byTime := make(map[string]string)
	for _, d := range resp.Doses {
		byTime[d.MedicationName+" "+d.ScheduledTime] = d.Status
	}
	return byTime
}

func TestDashboardToday_EveningLogDoesNotFillMorningSlot(t *testing.T) {
	userID := uuid.New()
	med := &models.Medication{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     "Metformin",
		Dosage:   "500mg",
		IsActive: true,
		Schedule: models.Schedule{Frequency: "twice_daily", Times: []string{"08:00", "20:00"}},
	}
	logs := &fakeLogRepo{entries: []*models.IntakeLog{
		{
			UserID:         userID,
			MedicationID:   med.ID,
			MedicationName: "Metformin",
			Status:         models.IntakeStatusTaken,
			TakenAt:        todayAt(20, 5),
		},
	}}
	h := NewDashboardHandler(&fakeMedRepo{meds: []*models.Medication{med}}, logs)

	rr := httptest.NewRecorder()
	h.Today(rr, authedRequest(http.MethodGet, "/api/v1/dashboard/today", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	doses := decodeDoses(t, rr)
	if got := doses["Metformin 20:00"]; got != "taken" {
		t.Errorf("Expected 20:00 dose taken, got %q", got)
	}
	if got := doses["Metformin 08:00"]; got != "due" {
		t.Errorf("Expected never-logged 08:00 dose still due, got %q", got)
	}
}

func TestDashboardToday_EachSlotBoundIndependently(t *testing.T) {
	userID := uuid.New()
	med := &models.Medication{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     "Metformin",
		Dosage:   "500mg",
		IsActive: true,
		Schedule: models.Schedule{Frequency: "twice_daily", Times: []string{"08:00", "20:00"}},
	}
	logs := &fakeLogRepo{entries: []*models.IntakeLog{
		{
			UserID:         userID,
			MedicationID:   med.ID,
			MedicationName: "Metformin",
			Status:         models.IntakeStatusSkipped,
			TakenAt:        todayAt(8, 10),
		},
		{
			UserID:         userID,
			MedicationID:   med.ID,
			MedicationName: "Metformin",
			Status:         models.IntakeStatusTaken,
			TakenAt:        todayAt(19, 50),
		},
	}}
	h := NewDashboardHandler(&fakeMedRepo{meds: []*models.Medication{med}}, logs)

	rr := httptest.NewRecorder()
	h.Today(rr, authedRequest(http.MethodGet, "/api/v1/dashboard/today", nil))

	doses := decodeDoses(t, rr)
	if got := doses["Metformin 08:00"]; got != "skipped" {
		t.Errorf("Expected 08:00 dose skipped, got %q", got)
	}
	if got := doses["Metformin 20:00"]; got != "taken" {
		t.Errorf("Expected 20:00 dose taken, got %q", got)
	}
}

func TestDashboardToday_OtherMedicationLogsIgnored(t *testing.T) {
	userID := uuid.New()
	metformin := &models.Medication{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     "Metformin",
		Dosage:   "500mg",
		IsActive: true,
		Schedule: models.Schedule{Frequency: "daily", Times: []string{"08:00"}},
	}
	lisinopril := &models.Medication{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     "Lisinopril",
		Dosage:   "10mg",
		IsActive: true,
		Schedule: models.Schedule{Frequency: "daily", Times: []string{"08:00"}},
	}
	logs := &fakeLogRepo{entries: []*models.IntakeLog{
		{
			UserID:         userID,
			MedicationID:   lisinopril.ID,
			MedicationName: "Lisinopril",
			Status:         models.IntakeStatusTaken,
			TakenAt:        todayAt(8, 2),
		},
	}}
	h := NewDashboardHandler(&fakeMedRepo{meds: []*models.Medication{metformin, lisinopril}}, logs)

	rr := httptest.NewRecorder()
	h.Today(rr, authedRequest(http.MethodGet, "/api/v1/dashboard/today", nil))

	doses := decodeDoses(t, rr)
	if got := doses["Lisinopril 08:00"]; got != "taken" {
		t.Errorf("Expected Lisinopril taken, got %q", got)
	}
	if got := doses["Metformin 08:00"]; got != "due" {
		t.Errorf("Expected Metformin still due, got %q", got)
	}
}

func TestNearestSlot(t *testing.T) {
	tests := []struct {
		name     string
		times    []string
		at       time.Time
		expected string
	}{
		{"evening entry binds to evening slot", []string{"08:00", "20:00"}, todayAt(20, 5), "20:00"},
		{"morning entry binds to morning slot", []string{"08:00", "20:00"}, todayAt(7, 45), "08:00"},
		{"midday entry picks the closer slot", []string{"08:00", "20:00"}, todayAt(13, 0), "08:00"},
		{"single slot", []string{"12:00"}, todayAt(23, 0), "12:00"},
		{"no slots", nil, todayAt(9, 0), ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := nearestSlot(tc.times, tc.at); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
