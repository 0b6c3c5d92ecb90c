package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
	"server/internal/genai"
	"server/internal/infra"
	"server/internal/infra/credentials"
	"server/internal/session"
	"server/internal/studio"
)

// AssistantBackend is the stateless per-turn conversational capability.
type AssistantBackend interface {
	AssistantTurn(ctx context.Context, history []genai.Message, message string) (string, error)
}

// App bundles the dependencies shared by every handler.
type App struct {
	Config      *infra.Config
	Logger      infra.Logger
	Sessions    *session.Store
	Studio      *studio.Service
	Assistant   AssistantBackend
	Credentials *credentials.Store
}

func NewApp(cfg *infra.Config, logger infra.Logger, sessions *session.Store, svc *studio.Service, assistant AssistantBackend, creds *credentials.Store) *App {
	return &App{
		Config:      cfg,
		Logger:      logger,
		Sessions:    sessions,
		Studio:      svc,
		Assistant:   assistant,
		Credentials: creds,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// domainError translates the error taxonomy into HTTP responses. Refusal text
// is shown to the user verbatim; transport details go to the logs only.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusUnprocessableEntity, "invalid_request", "provide a subject image, a reference image or a creative brief")
	case errors.Is(err, domain.ErrMissingCredential):
		a.error(w, http.StatusUnauthorized, "missing_credential", "no usable API credential is configured; select one first")
	case errors.Is(err, domain.ErrModelRefusal):
		a.error(w, http.StatusUnprocessableEntity, "model_refusal", domain.RefusalDetail(err))
	case errors.Is(err, domain.ErrEmptyResponse):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("backend returned empty response")
		a.error(w, http.StatusBadGateway, "empty_response", "the backend returned no usable content")
	case errors.Is(err, domain.ErrSessionBusy):
		a.error(w, http.StatusConflict, "session_busy", "another operation is already in flight for this session")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("backend failure")
		a.error(w, http.StatusBadGateway, "backend_failure", "the generation backend failed; try again")
	}
}
