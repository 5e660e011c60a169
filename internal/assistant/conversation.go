package assistant

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

// User-visible replies for failures inside a turn. A turn that has started
// always settles with an assistant turn; errors never propagate to the
// presentation layer as faults.
const (
	providerErrorReply   = "Sorry, I encountered an error. Please try again."
	unexpectedErrorReply = "Sorry, something went wrong. Please try again."
)

var (
	// ErrEmptyMessage rejects empty or whitespace-only input before any
	// turn is recorded.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy rejects a submit while a previous one has not settled. The
	// transcript is untouched.
	ErrBusy = errors.New("a request is already in flight")
	// ErrSuperseded reports that the conversation was reset while the
	// request was in flight; the late result was discarded.
	ErrSuperseded = errors.New("conversation was reset during the request")
)

// Gateway sends a composed prompt to the language model and returns its raw
// text. One attempt per call; retry policy belongs to the caller (currently
// none).
type Gateway interface {
	AssistantReply(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type MedicationStore interface {
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*models.Medication, error)
}

type IntakeLogStore interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.IntakeLog, error)
}

// conversation is the per-user session state. The generation counter is
// bumped on every reset so a response settling after a reset can detect it
// and discard itself instead of leaking into the new transcript.
type conversation struct {
	mu         sync.Mutex
	page       models.PageContext
	transcript []models.ConversationTurn
	inFlight   bool
	generation uint64
}

func (c *conversation) resetLocked(page models.PageContext) {
	c.page = page
	c.transcript = nil
	c.inFlight = false
	c.generation++
}

// Manager orchestrates assistant conversations: one session per user,
// scoped to the page the user is on. Submitting from a different page
// starts a fresh conversation first.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*conversation

	gateway Gateway
	meds    MedicationStore
	logs    IntakeLogStore
	now     func() time.Time
}

func NewManager(gateway Gateway, meds MedicationStore, logs IntakeLogStore) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*conversation),
		gateway:  gateway,
		meds:     meds,
		logs:     logs,
		now:      time.Now,
	}
}

func (m *Manager) session(userID uuid.UUID, page models.PageContext) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.sessions[userID]
	if !ok {
		conv = &conversation{page: page}
		m.sessions[userID] = conv
	}
	return conv
}

// Submit runs one conversation turn: append the user turn, gather the
// user's medications and recent logs, compose the prompt, call the model,
// repair the reply, and append exactly one assistant turn. The in-flight
// flag is released on every exit path.
func (m *Manager) Submit(ctx context.Context, userID uuid.UUID, page models.PageContext, message string) (models.ConversationTurn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.ConversationTurn{}, ErrEmptyMessage
	}

	conv := m.session(userID, page)

	conv.mu.Lock()
	if conv.page != page {
		// Navigating to a different page starts a fresh conversation;
		// context-specific history must not bleed across pages.
		conv.resetLocked(page)
	}
	if conv.inFlight {
		conv.mu.Unlock()
		return models.ConversationTurn{}, ErrBusy
	}
	conv.inFlight = true
	gen := conv.generation
	conv.transcript = append(conv.transcript, models.ConversationTurn{Role: models.RoleUser, Content: message})
	conv.mu.Unlock()

	out := m.respond(ctx, userID, page, message)

	conv.mu.Lock()
	defer conv.mu.Unlock()
	if conv.generation != gen {
		// Reset happened while we were waiting on the model. The reset
		// already cleared inFlight; appending here would mix contexts.
		return models.ConversationTurn{}, ErrSuperseded
	}
	conv.inFlight = false
	turn := models.ConversationTurn{
		Role:        models.RoleAssistant,
		Content:     out.Response,
		Suggestions: out.Suggestions,
	}
	conv.transcript = append(conv.transcript, turn)
	return turn, nil
}

// SelectSuggestion submits a displayed suggestion chip as if the user had
// typed it.
func (m *Manager) SelectSuggestion(ctx context.Context, userID uuid.UUID, page models.PageContext, suggestion string) (models.ConversationTurn, error) {
	return m.Submit(ctx, userID, page, suggestion)
}

// Reset clears the user's conversation for a page navigation. Any in-flight
// request's result will be discarded when it settles.
func (m *Manager) Reset(userID uuid.UUID, page models.PageContext) {
	conv := m.session(userID, page)
	conv.mu.Lock()
	conv.resetLocked(page)
	conv.mu.Unlock()
}

// Transcript returns a copy of the user's current transcript and the page
// it belongs to.
func (m *Manager) Transcript(userID uuid.UUID, page models.PageContext) []models.ConversationTurn {
	conv := m.session(userID, page)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if conv.page != page {
		return nil
	}
	out := make([]models.ConversationTurn, len(conv.transcript))
	copy(out, conv.transcript)
	return out
}

// respond produces the assistant output for one turn. It never fails and
// never panics outward: provider errors and unexpected panics both settle
// into a fixed, user-visible error reply.
func (m *Manager) respond(ctx context.Context, userID uuid.UUID, page models.PageContext, message string) (out models.AssistantOutput) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("assistant: panic during turn for user %s: %v", userID, r)
			out = models.AssistantOutput{Response: unexpectedErrorReply}
		}
	}()

	now := m.now()

	medications, err := m.meds.ListActiveByUser(ctx, userID)
	if err != nil {
		log.Printf("assistant: failed to load medications for user %s: %v", userID, err)
		return models.AssistantOutput{Response: providerErrorReply}
	}

	entries, err := m.logs.ListSince(ctx, userID, now.Add(-adherenceWindow))
	if err != nil {
		log.Printf("assistant: failed to load intake logs for user %s: %v", userID, err)
		return models.AssistantOutput{Response: providerErrorReply}
	}

	stats := ComputeAdherence(entries, now)
	today := TodayEntries(entries, now)

	prompt := ComposePrompt(page, message, medications, today, &stats)

	raw, err := m.gateway.AssistantReply(ctx, prompt.System, prompt.User)
	if err != nil {
		log.Printf("assistant: model call failed for user %s: %v", userID, err)
		return models.AssistantOutput{Response: providerErrorReply}
	}

	return ParseAssistantOutput(raw)
}
