package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := a.Sessions.Create()
	a.json(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"stages":     sess.Stages.Snapshot(),
	})
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	a.Sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// SessionStages exposes the live stage board for polling clients.
func (a *App) SessionStages(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"stages":     sess.Stages.Snapshot(),
	})
}
