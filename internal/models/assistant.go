package models

import (
	"fmt"
	"time"
)

// PageContext identifies which section of the app the user is viewing. It
// selects the assistant's persona and default suggestion chips, and a
// conversation is scoped to exactly one page context.
type PageContext string

const (
	PageDashboard   PageContext = "dashboard"
	PageMedications PageContext = "medications"
	PageReports     PageContext = "reports"
)

// ParsePageContext validates a page context supplied by the client. The set
// is closed: adding a page means adding a constant here and a template in
// the assistant package.
func ParsePageContext(s string) (PageContext, error) {
	switch PageContext(s) {
	case PageDashboard, PageMedications, PageReports:
		return PageContext(s), nil
	}
	return "", fmt.Errorf("unknown page context %q", s)
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one entry in a transcript. Suggestions are attached
// only to assistant turns.
type ConversationTurn struct {
	Role        string   `json:"role"`
	Content     string   `json:"content"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// AssistantOutput is the structured reply the model is instructed to emit:
// a response string plus 2-3 short follow-up questions.
type AssistantOutput struct {
	Response    string   `json:"response"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// AdherenceStats summarizes the trailing 30-day intake history.
type AdherenceStats struct {
	TotalScheduled int `json:"total_scheduled"`
	TotalTaken     int `json:"total_taken"`
	AdherenceRate  int `json:"adherence_rate"` // 0-100
}

// TodayLogEntry is the projection of an intake log handed to the prompt
// composer for entries dated today.
type TodayLogEntry struct {
	MedicationName string    `json:"medication_name"`
	Status         string    `json:"status"`
	Time           time.Time `json:"time"`
}

type AssistantMessageRequest struct {
	PageContext string `json:"page_context"`
	Message     string `json:"message"`
}

type AssistantResetRequest struct {
	PageContext string `json:"page_context"`
}
