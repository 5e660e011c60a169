package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

// BuildSchedulePrompt asks the model for an optimal dosing schedule for one
// medication based on the user's intake history.
func BuildSchedulePrompt(med *models.Medication, entries []*models.IntakeLog) string {
	var b strings.Builder

	b.WriteString("You are a medication adherence analyst. Suggest an optimal dosing schedule for the medication below, based on when the user actually takes or misses doses.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.\n\n")

	b.WriteString(fmt.Sprintf("Medication: %s (%s), currently %s at %s\n",
		med.Name, med.Dosage, med.Schedule.Frequency, strings.Join(med.Schedule.Times, ", ")))

	if len(entries) == 0 {
		b.WriteString("\nNo intake history is available; keep the current number of daily doses and suggest times that are easy to remember.\n")
	} else {
		b.WriteString("\nIntake history (most recent last):\n")
		for _, entry := range entries {
			b.WriteString(fmt.Sprintf("- %s %s\n", entry.TakenAt.Format("2006-01-02 15:04"), entry.Status))
		}
	}

	b.WriteString(`
Rules:
- Keep the same number of doses per day as the current schedule.
- Prefer times close to when the user reliably takes doses; move times the user frequently misses.
- Times must be "HH:MM" 24-hour strings.

JSON schema:
{"times": ["HH:MM"], "rationale": "one short paragraph explaining the suggestion"}
`)

	return b.String()
}

// ParseScheduleSuggestion parses the model's schedule JSON, tolerating a
// stray markdown fence.
func ParseScheduleSuggestion(raw string) (*models.ScheduleSuggestion, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var suggestion models.ScheduleSuggestion
	if err := json.Unmarshal([]byte(text), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse schedule suggestion: %w", err)
	}
	if len(suggestion.Times) == 0 {
		return nil, fmt.Errorf("schedule suggestion has no times")
	}
	return &suggestion, nil
}
