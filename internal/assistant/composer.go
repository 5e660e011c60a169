package assistant

import (
	"fmt"
	"strings"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

// Prompt is a composed system/user prompt pair ready for the model gateway.
type Prompt struct {
	System string
	User   string
}

type pageTemplate struct {
	persona     string
	suggestions []string
}

// One template per page context. The set is closed; an unmapped context is a
// programming error caught by ParsePageContext at the API boundary.
var pageTemplates = map[models.PageContext]pageTemplate{
	models.PageDashboard: {
		persona: `You are a friendly medication assistant on the dashboard of a personal medication tracker.
Your responsibilities:
- Give the user a clear picture of today's doses: what has been taken, what is still due, and what was missed.
- Answer questions about their overall adherence and gently encourage consistency.
- Keep answers short and practical.`,
		suggestions: []string{
			"What do I still need to take today?",
			"How is my adherence this month?",
			"Did I miss anything yesterday?",
		},
	},
	models.PageMedications: {
		persona: `You are a knowledgeable medication assistant on the medications page of a personal medication tracker.
Your responsibilities:
- Answer questions about the user's medications: common side effects, food and drug interactions, and general usage guidance.
- Help the user understand their dosing schedules.
- ALWAYS include a reminder to consult a healthcare provider or pharmacist before changing how they take any medication. Never present your guidance as a substitute for professional medical advice.`,
		suggestions: []string{
			"What are common side effects of my medications?",
			"Should any of these be taken with food?",
			"Can my medications interact with each other?",
		},
	},
	models.PageReports: {
		persona: `You are an encouraging medication assistant on the reports page of a personal medication tracker.
Your responsibilities:
- Explain adherence trends in the user's intake history in plain language.
- Point out patterns such as frequently missed times of day and suggest small, realistic improvements.
- Celebrate progress and keep the tone supportive, never judgmental.`,
		suggestions: []string{
			"What does my adherence trend look like?",
			"Which dose do I miss most often?",
			"How can I improve my adherence?",
		},
	},
}

// Shared instruction block appended to every system prompt. It pins the
// exact response shape the validator expects.
const outputInstructions = `
Respond with ONLY a valid JSON object in exactly this shape, with no markdown, no backticks, and no text outside the JSON:
{"response": "your answer to the user", "suggestions": ["follow-up question 1", "follow-up question 2"]}

"response" is required. "suggestions" must be 2-3 short follow-up questions the user might ask next.`

// DefaultSuggestions returns the suggestion chips shown before the first
// turn on a page.
func DefaultSuggestions(page models.PageContext) []string {
	tpl, ok := pageTemplates[page]
	if !ok {
		return nil
	}
	out := make([]string, len(tpl.suggestions))
	copy(out, tpl.suggestions)
	return out
}

// ComposePrompt builds the system and user prompts for one assistant turn.
// It is a pure function: the same inputs always produce the same prompts.
func ComposePrompt(
	page models.PageContext,
	message string,
	medications []*models.Medication,
	todayLogs []models.TodayLogEntry,
	stats *models.AdherenceStats,
) Prompt {
	tpl := pageTemplates[page]

	var b strings.Builder

	b.WriteString("Current medications:\n")
	if len(medications) == 0 {
		b.WriteString("The user has no medications recorded yet.\n")
	} else {
		for _, med := range medications {
			b.WriteString(fmt.Sprintf("- %s (%s), %s at %s\n",
				med.Name, med.Dosage, med.Schedule.Frequency, strings.Join(med.Schedule.Times, ", ")))
		}
	}

	if len(todayLogs) > 0 {
		b.WriteString("\nToday's intake log:\n")
		for _, entry := range todayLogs {
			b.WriteString(fmt.Sprintf("- %s: %s at %s\n",
				entry.MedicationName, entry.Status, entry.Time.Format("15:04")))
		}
	}

	if stats != nil {
		b.WriteString(fmt.Sprintf("\nAdherence over the last 30 days: %d of %d doses taken (%d%%).\n",
			stats.TotalTaken, stats.TotalScheduled, stats.AdherenceRate))
	}

	b.WriteString("\nUser question: ")
	b.WriteString(message)

	return Prompt{
		System: tpl.persona + "\n" + outputInstructions,
		User:   b.String(),
	}
}
