package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/promptbox/internal/projectservice"
	"github.com/starford/promptbox/internal/settings"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *projectservice.Service, st settings.Store, newProvider ProviderFactory, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, st, newProvider)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Categories.
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/reorder", h.ReorderCategories)
	r.Put("/categories/{id}", h.UpdateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)

	// Projects.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)
	r.Get("/projects/{id}", h.GetProject)
	r.Put("/projects/{id}", h.UpdateProject)
	r.Delete("/projects/{id}", h.DeleteProject)
	r.Post("/projects/{id}/favorite", h.ToggleFavorite)

	// Versions.
	r.Post("/projects/{id}/versions", h.CreateVersion)
	r.Get("/projects/{id}/versions", h.ListVersions)

	// Search.
	r.Get("/search", h.Search)

	// Settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	// AI.
	r.Post("/ai/optimize", h.Optimize)
	r.Post("/ai/run", h.Run)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
