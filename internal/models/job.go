package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         string          `json:"type"` // "schedule-suggestion"
	ReferenceID  uuid.UUID       `json:"reference_id"`
	ConfigJSON   json.RawMessage `json:"config"`
	ResultJSON   json.RawMessage `json:"result"`
	Status       string          `json:"status"` // "pending" | "processing" | "completed" | "failed"
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

// ScheduleSuggestion is the structured result of a schedule-suggestion job.
type ScheduleSuggestion struct {
	Times     []string `json:"times"`
	Rationale string   `json:"rationale"`
}

// WebSocket message types

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type JobStatusUpdate struct {
	JobID    uuid.UUID `json:"job_id"`
	Status   string    `json:"status"`
	StepName string    `json:"step_name"`
}

type JobCompletedEvent struct {
	JobID      uuid.UUID `json:"job_id"`
	ResultType string    `json:"result_type"`
}

type DoseReminderEvent struct {
	MedicationID   uuid.UUID `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	ScheduledTime  string    `json:"scheduled_time"`
}

// API error response

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
