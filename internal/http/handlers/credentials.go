package handlers

import (
	"encoding/json"
	"net/http"
)

// CredentialStatus reports whether a usable credential is configured, without
// ever echoing the key itself.
func (a *App) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]bool{"configured": a.Credentials.Configured()})
}

type setCredentialRequest struct {
	APIKey string `json:"api_key"`
}

// SetCredential is the interactive "select a credential" surface.
func (a *App) SetCredential(w http.ResponseWriter, r *http.Request) {
	var req setCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Credentials.Set(req.APIKey); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "api_key is required")
		return
	}
	a.Logger.Info().Msg("credential selected")
	a.json(w, http.StatusOK, map[string]bool{"configured": true})
}
