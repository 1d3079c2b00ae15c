package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"promptstudio/internal/http/handlers"
	"promptstudio/internal/middleware"
)

// Options tunes the middleware stack.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		middleware.Logger(app.Logger, app.Metrics),
		chimiddleware.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)
	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Get("/healthz", app.Health)
	if app.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", app.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/generate", app.Generate)
		r.Post("/video-status", app.VideoStatus)
		r.Get("/download-video", app.DownloadVideo)
	})

	return r
}
