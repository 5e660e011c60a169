package assistant

import (
	"math"
	"time"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

// adherenceWindow is the trailing period adherence stats are computed over.
const adherenceWindow = 30 * 24 * time.Hour

// ComputeAdherence summarizes the entries falling inside the trailing
// 30-day window ending at now. Every logged entry counts toward the
// denominator, which is floored at 1 so the rate is always defined.
func ComputeAdherence(entries []*models.IntakeLog, now time.Time) models.AdherenceStats {
	cutoff := now.Add(-adherenceWindow)

	var scheduled, taken int
	for _, entry := range entries {
		if entry.TakenAt.Before(cutoff) || entry.TakenAt.After(now) {
			continue
		}
		scheduled++
		if entry.Status == models.IntakeStatusTaken {
			taken++
		}
	}

	denominator := scheduled
	if denominator < 1 {
		denominator = 1
	}
	rate := int(math.Round(float64(taken) / float64(denominator) * 100))

	return models.AdherenceStats{
		TotalScheduled: scheduled,
		TotalTaken:     taken,
		AdherenceRate:  rate,
	}
}

// TodayEntries projects the entries whose local calendar date matches
// now's date, in their original order.
func TodayEntries(entries []*models.IntakeLog, now time.Time) []models.TodayLogEntry {
	y, m, d := now.Date()

	var today []models.TodayLogEntry
	for _, entry := range entries {
		ey, em, ed := entry.TakenAt.In(now.Location()).Date()
		if ey != y || em != m || ed != d {
			continue
		}
		today = append(today, models.TodayLogEntry{
			MedicationName: entry.MedicationName,
			Status:         entry.Status,
			Time:           entry.TakenAt.In(now.Location()),
		})
	}
	return today
}
