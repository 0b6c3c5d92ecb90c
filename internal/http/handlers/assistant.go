package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"server/internal/genai"
)

type assistantRequest struct {
	Message string          `json:"message"`
	History []genai.Message `json:"history"`
}

// AssistantChat answers one brainstorming turn. The exchange is stateless on
// the server; the client carries the transcript.
func (a *App) AssistantChat(w http.ResponseWriter, r *http.Request) {
	if _, err := a.Sessions.Get(chi.URLParam(r, "id")); err != nil {
		a.domainError(w, r, err)
		return
	}

	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "message is required")
		return
	}

	reply, err := a.Assistant.AssistantTurn(r.Context(), req.History, req.Message)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"reply": reply})
}
