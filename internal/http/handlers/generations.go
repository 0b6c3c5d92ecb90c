package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"server/internal/composer"
	"server/internal/domain"
)

// maxUploadBytes caps the whole multipart body; individual images stay well
// under this.
const maxUploadBytes = 32 << 20

// Generate runs one full pipeline pass for the session. The subject and
// reference uploads are read concurrently since they are independent.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := a.Sessions.Acquire(id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	defer a.Sessions.Release(id)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "expected a multipart form")
		return
	}

	var (
		wg              sync.WaitGroup
		subject, ref    domain.MediaInput
		subjErr, refErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		subject, subjErr = readMediaPart(r, "subject")
	}()
	go func() {
		defer wg.Done()
		ref, refErr = readMediaPart(r, "reference")
	}()
	wg.Wait()
	if subjErr != nil || refErr != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read an uploaded image")
		return
	}

	output := composer.NormalizeOutputType(r.FormValue("output_type"))
	req := composer.Request{
		Subject:    subject,
		Reference:  ref,
		Output:     output,
		Landing:    composer.NormalizeLandingPosition(r.FormValue("landing_position"), output),
		TextMode:   composer.NormalizeTextMode(r.FormValue("text_mode")),
		CustomText: r.FormValue("custom_text"),
		Brief:      r.FormValue("brief"),
	}

	artifact, err := a.Studio.Generate(r.Context(), sess, req)
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	scenario, _ := composer.SelectScenario(subject.Present(), ref.Present(), strings.TrimSpace(req.Brief) != "")
	a.json(w, http.StatusOK, map[string]any{
		"session_id":   sess.ID,
		"scenario":     string(scenario),
		"aspect_ratio": composer.ResolveFormat(output, req.Landing).AspectRatio,
		"artifact": map[string]any{
			"data_uri":   artifact.DataURI(),
			"mime":       artifact.MIME,
			"created_at": artifact.CreatedAt,
		},
		"stages": sess.Stages.Snapshot(),
	})
}

// readMediaPart reads one optional image part from the form. A missing part is
// not an error; an unreadable one is.
func readMediaPart(r *http.Request, name string) (domain.MediaInput, error) {
	file, header, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return domain.MediaInput{}, nil
	}
	if err != nil {
		return domain.MediaInput{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.MediaInput{}, err
	}
	if len(data) == 0 {
		return domain.MediaInput{}, nil
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return domain.MediaInput{Data: data, MIME: mime}, nil
}
