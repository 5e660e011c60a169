package models

import (
	"time"

	"github.com/google/uuid"
)

// Intake statuses. Missed and skipped doses are recorded as explicit
// entries, so the adherence denominator is simply the entry count.
const (
	IntakeStatusTaken   = "taken"
	IntakeStatusMissed  = "missed"
	IntakeStatusSkipped = "skipped"
)

type IntakeLog struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	MedicationID   uuid.UUID `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	Status         string    `json:"status"`
	TakenAt        time.Time `json:"taken_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type LogIntakeRequest struct {
	MedicationID uuid.UUID  `json:"medication_id"`
	Status       string     `json:"status"`
	TakenAt      *time.Time `json:"taken_at"` // defaults to now
}

func ValidIntakeStatus(s string) bool {
	return s == IntakeStatusTaken || s == IntakeStatusMissed || s == IntakeStatusSkipped
}
