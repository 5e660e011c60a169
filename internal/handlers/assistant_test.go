package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/zxiaoiegw/pill-reminder/internal/assistant"
	"github.com/zxiaoiegw/pill-reminder/internal/middleware"
	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

type fakeManager struct {
	turn       models.ConversationTurn
	err        error
	transcript []models.ConversationTurn
	resets     int
	lastPage   models.PageContext
	lastMsg    string
}

func (f *fakeManager) Submit(ctx context.Context, userID uuid.UUID, page models.PageContext, message string) (models.ConversationTurn, error) {
	f.lastPage = page
	f.lastMsg = message
	return f.turn, f.err
}

func (f *fakeManager) Reset(userID uuid.UUID, page models.PageContext) {
	f.resets++
	f.lastPage = page
}

func (f *fakeManager) Transcript(userID uuid.UUID, page models.PageContext) []models.ConversationTurn {
	f.lastPage = page
	return f.transcript
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
	return req.WithContext(ctx)
}

func TestAssistantMessage_Success(t *testing.T) {
	mgr := &fakeManager{turn: models.ConversationTurn{
		Role:        models.RoleAssistant,
		Content:     "You have one dose left today.",
		Suggestions: []string{"Which one?"},
	}}
	h := NewAssistantHandler(mgr)

	body, _ := json.Marshal(models.AssistantMessageRequest{
		PageContext: "dashboard",
		Message:     "What's left?",
	})
	rr := httptest.NewRecorder()
	h.Message(rr, authedRequest(http.MethodPost, "/api/v1/assistant/message", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Response    string   `json:"response"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Response != "You have one dose left today." {
		t.Errorf("Unexpected response: %q", resp.Response)
	}
	if mgr.lastPage != models.PageDashboard || mgr.lastMsg != "What's left?" {
		t.Errorf("Manager called with page=%q msg=%q", mgr.lastPage, mgr.lastMsg)
	}
}

func TestAssistantMessage_InvalidPageContext(t *testing.T) {
	tests := []string{"settings", "", "Dashboard", "reports "}

	for _, page := range tests {
		t.Run("page="+page, func(t *testing.T) {
			mgr := &fakeManager{}
			h := NewAssistantHandler(mgr)

			body, _ := json.Marshal(models.AssistantMessageRequest{PageContext: page, Message: "hi"})
			rr := httptest.NewRecorder()
			h.Message(rr, authedRequest(http.MethodPost, "/api/v1/assistant/message", body))

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 for page %q, got %d", page, rr.Code)
			}
			if mgr.lastMsg != "" {
				t.Error("Expected manager not to be called on validation failure")
			}
		})
	}
}

func TestAssistantMessage_EmptyMessage(t *testing.T) {
	mgr := &fakeManager{}
	h := NewAssistantHandler(mgr)

	body, _ := json.Marshal(models.AssistantMessageRequest{PageContext: "dashboard", Message: "   "})
	rr := httptest.NewRecorder()
	h.Message(rr, authedRequest(http.MethodPost, "/api/v1/assistant/message", body))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for blank message, got %d", rr.Code)
	}
}

func TestAssistantMessage_Busy(t *testing.T) {
	mgr := &fakeManager{err: assistant.ErrBusy}
	h := NewAssistantHandler(mgr)

	body, _ := json.Marshal(models.AssistantMessageRequest{PageContext: "dashboard", Message: "hi"})
	rr := httptest.NewRecorder()
	h.Message(rr, authedRequest(http.MethodPost, "/api/v1/assistant/message", body))

	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected 409 while a request is in flight, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Code != "REQUEST_IN_FLIGHT" {
		t.Errorf("Expected REQUEST_IN_FLIGHT, got %q", resp.Error.Code)
	}
}

func TestAssistantMessage_Superseded(t *testing.T) {
	mgr := &fakeManager{err: assistant.ErrSuperseded}
	h := NewAssistantHandler(mgr)

	body, _ := json.Marshal(models.AssistantMessageRequest{PageContext: "dashboard", Message: "hi"})
	rr := httptest.NewRecorder()
	h.Message(rr, authedRequest(http.MethodPost, "/api/v1/assistant/message", body))

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 after a mid-flight reset, got %d", rr.Code)
	}
}

func TestAssistantReset(t *testing.T) {
	mgr := &fakeManager{}
	h := NewAssistantHandler(mgr)

	body, _ := json.Marshal(models.AssistantResetRequest{PageContext: "medications"})
	rr := httptest.NewRecorder()
	h.Reset(rr, authedRequest(http.MethodPost, "/api/v1/assistant/reset", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if mgr.resets != 1 || mgr.lastPage != models.PageMedications {
		t.Errorf("Expected one reset for medications, got resets=%d page=%q", mgr.resets, mgr.lastPage)
	}
}

func TestAssistantTranscript_EmptyIsArray(t *testing.T) {
	mgr := &fakeManager{transcript: nil}
	h := NewAssistantHandler(mgr)

	rr := httptest.NewRecorder()
	h.Transcript(rr, authedRequest(http.MethodGet, "/api/v1/assistant/transcript?page_context=reports", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got := rr.Body.String(); !bytes.Contains([]byte(got), []byte(`"transcript":[]`)) {
		t.Errorf("Expected empty array, not null, got %s", got)
	}
}

func TestAssistantSuggestions(t *testing.T) {
	h := NewAssistantHandler(&fakeManager{})

	rr := httptest.NewRecorder()
	h.Suggestions(rr, authedRequest(http.MethodGet, "/api/v1/assistant/suggestions?page_context=dashboard", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Suggestions) != 3 {
		t.Errorf("Expected 3 default suggestions, got %d", len(resp.Suggestions))
	}
}

func TestAssistantSuggestions_InvalidPage(t *testing.T) {
	h := NewAssistantHandler(&fakeManager{})

	rr := httptest.NewRecorder()
	h.Suggestions(rr, authedRequest(http.MethodGet, "/api/v1/assistant/suggestions?page_context=profile", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown page, got %d", rr.Code)
	}
}
