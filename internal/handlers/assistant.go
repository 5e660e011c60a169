package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/zxiaoiegw/pill-reminder/internal/assistant"
	"github.com/zxiaoiegw/pill-reminder/internal/middleware"
	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

type conversationManager interface {
	Submit(ctx context.Context, userID uuid.UUID, page models.PageContext, message string) (models.ConversationTurn, error)
	Reset(userID uuid.UUID, page models.PageContext)
	Transcript(userID uuid.UUID, page models.PageContext) []models.ConversationTurn
}

type AssistantHandler struct {
	manager conversationManager
}

func NewAssistantHandler(manager conversationManager) *AssistantHandler {
	return &AssistantHandler{manager: manager}
}

// Message runs one conversation turn. Shape validation fails fast here:
// a malformed page context or empty message is rejected before any turn is
// recorded, distinct from provider failures which settle inside the
// transcript as a polite error turn.
func (h *AssistantHandler) Message(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.AssistantMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	page, err := models.ParsePageContext(req.PageContext)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid page context", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	turn, err := h.manager.Submit(r.Context(), userID, page, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyMessage):
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		case errors.Is(err, assistant.ErrBusy):
			writeJSON(w, http.StatusConflict, errorResp("REQUEST_IN_FLIGHT", "Please wait for the current reply to finish", r))
		case errors.Is(err, assistant.ErrSuperseded):
			writeJSON(w, http.StatusConflict, errorResp("CONVERSATION_RESET", "The conversation was reset before the reply arrived", r))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to get AI response", r))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"response":    turn.Content,
		"suggestions": turn.Suggestions,
	})
}

// Reset starts a fresh conversation for a page navigation.
func (h *AssistantHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.AssistantResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	page, err := models.ParsePageContext(req.PageContext)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid page context", r))
		return
	}

	h.manager.Reset(userID, page)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation reset"})
}

func (h *AssistantHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page, err := models.ParsePageContext(r.URL.Query().Get("page_context"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid page context", r))
		return
	}

	turns := h.manager.Transcript(userID, page)
	if turns == nil {
		turns = []models.ConversationTurn{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transcript": turns})
}

// Suggestions returns the default suggestion chips for a page, shown before
// the first turn.
func (h *AssistantHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	page, err := models.ParsePageContext(r.URL.Query().Get("page_context"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid page context", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": assistant.DefaultSuggestions(page)})
}
