package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"relaybot/internal/http/handlers"
	"relaybot/internal/infra"
	"relaybot/internal/middleware"
)

// NewRouter assembles the middleware chain and routes.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
	)
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/models", app.Models)

	r.Route("/v1/chat", func(r chi.Router) {
		r.Post("/", app.Chat)
		r.Post("/clear", app.ClearChat)
	})
	r.Post("/v1/message", app.Message)
	r.Post("/v1/images/generate", app.GenerateImage)

	return r
}
