// Package api exposes the planning and evaluation operations over HTTP.
// Single implicit user: there is no authentication surface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"dayscore-backend/internal/eval"
	"dayscore-backend/internal/store"
)

type API struct {
	Store *store.Store
	Eval  *eval.Service
	Log   *zap.Logger
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	// Evaluation calls block on the model; the route budget must exceed
	// the client's own 30s ceiling.
	r.Use(middleware.Timeout(45 * time.Second))
	r.Use(a.loggingMiddleware)

	r.Get("/health", a.handleHealth)

	r.Route("/dream", func(r chi.Router) {
		r.Get("/", a.handleGetDream)
		r.Put("/", a.handlePutDream)
	})

	r.Route("/goals/{period}", func(r chi.Router) {
		r.Get("/", a.handleGetPeriodGoals)
		r.Put("/", a.handlePutPeriodGoals)
	})

	r.Route("/entries/{date}", func(r chi.Router) {
		r.Get("/", a.handleGetEntry)
		r.Put("/", a.handlePutEntry)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", a.handleListTasks)
		r.Post("/", a.handleCreateTask)
		r.Post("/{id}/close", a.handleCloseTask)
	})

	r.Route("/evaluations/{date}", func(r chi.Router) {
		r.Get("/", a.handleGetEvaluation)
		r.Post("/", a.handleRunEvaluation)
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
