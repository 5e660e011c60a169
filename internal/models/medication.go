package models

import (
	"time"

	"github.com/google/uuid"
)

// Schedule describes how often a medication is taken and at which times of
// day. Times are "HH:MM" strings in the user's local timezone, kept in the
// order the user entered them.
type Schedule struct {
	Frequency string   `json:"frequency"` // "daily" | "twice_daily" | "weekly" | "as_needed"
	Times     []string `json:"times"`
}

type Medication struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Schedule  Schedule  `json:"schedule"`
	Notes     *string   `json:"notes"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateMedicationRequest struct {
	Name     string   `json:"name"`
	Dosage   string   `json:"dosage"`
	Schedule Schedule `json:"schedule"`
	Notes    *string  `json:"notes"`
}

type UpdateMedicationRequest struct {
	Name     *string   `json:"name"`
	Dosage   *string   `json:"dosage"`
	Schedule *Schedule `json:"schedule"`
	Notes    *string   `json:"notes"`
	IsActive *bool     `json:"is_active"`
}
