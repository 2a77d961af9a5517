package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterDeps groups what NewRouter wires together.
type RouterDeps struct {
	Timer       TimerService
	Board       NoticeBoard
	Lock        LockManager
	History     History
	Metrics     http.Handler
	RateLimiter *RateLimiter
	Logger      *slog.Logger
}

// NewRouter builds the route tree. Mutating routes share the rate limiter.
func NewRouter(deps RouterDeps) http.Handler {
	h := NewHandler(deps.Timer, deps.Board, deps.Lock, deps.History, deps.Logger)

	r := chi.NewRouter()
	r.Use(Recovery(deps.Logger))
	r.Use(Logging(deps.Logger))

	r.Get("/health", h.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/timer", h.GetTimer)
		r.Get("/timer/events", h.Events)
		r.Get("/status", h.GetNotice)
		r.Get("/lock", h.GetLock)
		r.Get("/history", h.ListHistory)

		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.Middleware())
			}
			r.Post("/timer/start", h.Start)
			r.Post("/timer/stop", h.Stop)
			r.Post("/timer/extend", h.Extend)
			r.Put("/timer/duration", h.SetDuration)
			r.Put("/language", h.SetLanguage)
			r.Post("/status/actions/{action}", h.TriggerAction)
			r.Post("/lock/permission", h.GrantLock)
			r.Delete("/lock/permission", h.RevokeLock)
		})
	})

	return r
}
