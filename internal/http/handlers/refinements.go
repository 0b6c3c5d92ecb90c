package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/composer"
)

type refinementRequest struct {
	Instruction string `json:"instruction"`
	OutputType  string `json:"output_type"`
}

// Refine applies a targeted edit to the session's current artifact. Only the
// final-render stage is touched.
func (a *App) Refine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := a.Sessions.Acquire(id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	defer a.Sessions.Release(id)

	var req refinementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	output := composer.NormalizeOutputType(req.OutputType)
	artifact, err := a.Studio.Refine(r.Context(), sess, req.Instruction, output)
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"session_id":   sess.ID,
		"aspect_ratio": composer.RefinementAspect(output),
		"artifact": map[string]any{
			"data_uri":   artifact.DataURI(),
			"mime":       artifact.MIME,
			"created_at": artifact.CreatedAt,
		},
		"stages": sess.Stages.Snapshot(),
	})
}
