package assistant

import (
	"testing"
	"time"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

func logAt(status string, at time.Time) *models.IntakeLog {
	return &models.IntakeLog{MedicationName: "Lisinopril", Status: status, TakenAt: at}
}

func TestComputeAdherence(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	var entries []*models.IntakeLog
	for i := 0; i < 6; i++ {
		entries = append(entries, logAt(models.IntakeStatusTaken, now.AddDate(0, 0, -i-1)))
	}
	entries = append(entries, logAt(models.IntakeStatusMissed, now.AddDate(0, 0, -8)))
	entries = append(entries, logAt(models.IntakeStatusSkipped, now.AddDate(0, 0, -9)))

	stats := ComputeAdherence(entries, now)

	if stats.TotalScheduled != 8 {
		t.Errorf("Expected 8 scheduled, got %d", stats.TotalScheduled)
	}
	if stats.TotalTaken != 6 {
		t.Errorf("Expected 6 taken, got %d", stats.TotalTaken)
	}
	if stats.AdherenceRate != 75 {
		t.Errorf("Expected 75%% adherence, got %d%%", stats.AdherenceRate)
	}
}

func TestComputeAdherence_EmptyHistory(t *testing.T) {
	stats := ComputeAdherence(nil, time.Now())

	if stats.TotalScheduled != 0 || stats.TotalTaken != 0 {
		t.Errorf("Expected zero counts, got %+v", stats)
	}
	if stats.AdherenceRate != 0 {
		t.Errorf("Expected 0%% adherence with no history, got %d%%", stats.AdherenceRate)
	}
}

func TestComputeAdherence_WindowBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	entries := []*models.IntakeLog{
		logAt(models.IntakeStatusTaken, now.AddDate(0, 0, -31)), // before window
		logAt(models.IntakeStatusTaken, now.AddDate(0, 0, -15)), // inside
		logAt(models.IntakeStatusMissed, now.Add(time.Hour)),    // future, excluded
	}

	stats := ComputeAdherence(entries, now)

	if stats.TotalScheduled != 1 {
		t.Errorf("Expected only the in-window entry counted, got %d", stats.TotalScheduled)
	}
	if stats.AdherenceRate != 100 {
		t.Errorf("Expected 100%% adherence, got %d%%", stats.AdherenceRate)
	}
}

func TestComputeAdherence_Rounding(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	// 2 of 3 taken = 66.67%, rounds to 67.
	entries := []*models.IntakeLog{
		logAt(models.IntakeStatusTaken, now.AddDate(0, 0, -1)),
		logAt(models.IntakeStatusTaken, now.AddDate(0, 0, -2)),
		logAt(models.IntakeStatusMissed, now.AddDate(0, 0, -3)),
	}

	stats := ComputeAdherence(entries, now)

	if stats.AdherenceRate != 67 {
		t.Errorf("Expected 67%% adherence, got %d%%", stats.AdherenceRate)
	}
}

func TestTodayEntries(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, loc)

	entries := []*models.IntakeLog{
		logAt(models.IntakeStatusTaken, time.Date(2026, 8, 31, 8, 0, 0, 0, loc)),
		logAt(models.IntakeStatusMissed, time.Date(2026, 8, 30, 20, 0, 0, 0, loc)),
		// 2026-09-01 02:00 UTC is still 2026-08-31 in New York.
		logAt(models.IntakeStatusTaken, time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)),
	}

	today := TodayEntries(entries, now)

	if len(today) != 2 {
		t.Fatalf("Expected 2 entries for today, got %d", len(today))
	}
	if today[0].Status != models.IntakeStatusTaken || today[0].Time.Hour() != 8 {
		t.Errorf("Unexpected first entry: %+v", today[0])
	}
	if today[1].Time.Hour() != 22 {
		t.Errorf("Expected UTC entry converted to local 22:00, got hour %d", today[1].Time.Hour())
	}
}
