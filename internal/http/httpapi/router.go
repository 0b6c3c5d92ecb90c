package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	mw "server/internal/middleware"
)

// NewRouter assembles the API surface. All routes are versioned under /v1.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		mw.Logger(app.Logger),
		mw.CORS(app.Config.AllowedOrigins),
		mw.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/credentials", func(r chi.Router) {
		r.Get("/status", app.CredentialStatus)
		r.Put("/key", app.SetCredential)
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", app.DeleteSession)
			r.Get("/stages", app.SessionStages)
			r.Post("/generations", app.Generate)
			r.Post("/refinements", app.Refine)
			r.Post("/assistant", app.AssistantChat)
		})
	})

	return r
}
