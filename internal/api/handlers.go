package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/promptbox/internal/ai"
	"github.com/starford/promptbox/internal/apperr"
	"github.com/starford/promptbox/internal/models"
	"github.com/starford/promptbox/internal/projectservice"
	"github.com/starford/promptbox/internal/settings"
)

// ProviderFactory builds an AI provider from settings-derived config.
// Injected so tests can substitute a stub backend.
type ProviderFactory func(ai.Config) (ai.Provider, error)

// Handler holds API route handlers.
type Handler struct {
	svc         *projectservice.Service
	settings    settings.Store
	newProvider ProviderFactory
}

// NewHandler creates a new Handler. newProvider may be nil, in which
// case the default factory is used.
func NewHandler(svc *projectservice.Service, st settings.Store, newProvider ProviderFactory) *Handler {
	if newProvider == nil {
		newProvider = ai.New
	}
	return &Handler{svc: svc, settings: st, newProvider: newProvider}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// --- Categories ---

// ListCategories handles GET /api/categories.
//
//	@Summary	List categories ordered by sort_order
//	@Tags		categories
//	@Produce	json
//	@Success	200	{array}	models.Category
//	@Security	BearerAuth
//	@Router		/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, err, "list categories")
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// CreateCategory handles POST /api/categories.
//
//	@Summary	Create a category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateCategoryRequest	true	"Category to create"
//	@Success	201		{object}	models.Category
//	@Failure	400		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	cat, err := h.svc.CreateCategory(r.Context(), req.Name, req.Color, req.Icon)
	if err != nil {
		writeError(w, err, "create category")
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory handles PUT /api/categories/{id}.
//
//	@Summary	Rename or restyle a category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Category id"
//	@Param		body	body		UpdateCategoryRequest	true	"Fields to change"
//	@Success	200		{object}	models.Category
//	@Failure	404		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/categories/{id} [put]
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	cat, err := h.svc.UpdateCategory(r.Context(), id, models.CategoryUpdate{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		writeError(w, err, "update category")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// ReorderCategories handles PUT /api/categories/reorder.
//
//	@Summary	Apply new category sort orders
//	@Tags		categories
//	@Accept		json
//	@Success	200	{object}	map[string]bool
//	@Security	BearerAuth
//	@Router		/categories/reorder [put]
func (h *Handler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var items []models.CategoryOrder
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.ReorderCategories(r.Context(), items); err != nil {
		writeError(w, err, "reorder categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteCategory handles DELETE /api/categories/{id}.
//
//	@Summary	Delete a category and all projects in it
//	@Tags		categories
//	@Success	200	{object}	map[string]bool
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/categories/{id} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "delete category")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// --- Projects ---

// ListProjects handles GET /api/projects.
//
//	@Summary	List projects newest-first with optional filters
//	@Tags		projects
//	@Produce	json
//	@Param		category	query		string	false	"Filter by category id"
//	@Param		is_favorite	query		bool	false	"Filter by favorite flag"
//	@Param		search		query		string	false	"Full-text filter"
//	@Success	200			{object}	ProjectListResponse
//	@Security	BearerAuth
//	@Router		/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := projectservice.ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if raw := q.Get("is_favorite"); raw != "" {
		fav, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid is_favorite"))
			return
		}
		f.Favorite = &fav
	}

	projects, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, err, "list projects")
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: projects, Total: len(projects)})
}

// GetProject handles GET /api/projects/{id}.
//
//	@Summary	Get a project including its current content
//	@Tags		projects
//	@Produce	json
//	@Param		id	path		string	true	"Project id"
//	@Success	200	{object}	models.Project
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/projects/{id} [get]
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "get project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProject handles POST /api/projects.
//
//	@Summary	Create a project
//	@Tags		projects
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateProjectRequest	true	"Project to create"
//	@Success	201		{object}	models.Project
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	category := req.CategoryID
	if category == "" {
		category = "uncategorized"
	}
	p, err := h.svc.Create(r.Context(), category, models.ProjectCreate{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Type:        req.Type,
	})
	if err != nil {
		writeError(w, err, "create project")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProject handles PUT /api/projects/{id}.
//
//	@Summary	Partially update a project; changing category_id moves it
//	@Tags		projects
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Project id"
//	@Param		body	body		UpdateProjectRequest	true	"Fields to change"
//	@Success	200		{object}	models.Project
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/projects/{id} [put]
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err, "update project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{id}.
//
//	@Summary	Delete a project
//	@Tags		projects
//	@Success	200	{object}	map[string]bool
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/projects/{id} [delete]
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "delete project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ToggleFavorite handles POST /api/projects/{id}/favorite.
//
//	@Summary	Flip the favorite flag
//	@Tags		projects
//	@Produce	json
//	@Param		id	path		string	true	"Project id"
//	@Success	200	{object}	models.Project
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/projects/{id}/favorite [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "toggle favorite")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// --- Versions ---

// CreateVersion handles POST /api/projects/{id}/versions.
//
//	@Summary	Snapshot content as the next version
//	@Tags		versions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Project id"
//	@Param		body	body		CreateVersionRequest	true	"Version content"
//	@Success	201		{object}	models.Version
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/projects/{id}/versions [post]
func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var req CreateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	v, err := h.svc.AppendVersion(r.Context(), chi.URLParam(r, "id"), req.Content, req.Parameters)
	if err != nil {
		writeError(w, err, "create version")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// ListVersions handles GET /api/projects/{id}/versions.
//
//	@Summary	List version history, newest first
//	@Tags		versions
//	@Produce	json
//	@Param		id	path	string	true	"Project id"
//	@Success	200	{array}	models.Version
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/projects/{id}/versions [get]
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.svc.Versions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "list versions")
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// --- Search ---

// Search handles GET /api/search.
//
//	@Summary	Full-text search over the index
//	@Tags		search
//	@Produce	json
//	@Param		q		query		string	true	"Query"
//	@Param		limit	query		int		false	"Max results"
//	@Success	200		{object}	SearchResponse
//	@Security	BearerAuth
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, err, "search")
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{ID: hit.ID, Name: hit.Name, Category: hit.Category, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// --- Settings ---

// GetSettings handles GET /api/settings.
//
//	@Summary	Read application settings
//	@Tags		settings
//	@Produce	json
//	@Success	200	{object}	settings.Settings
//	@Security	BearerAuth
//	@Router		/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load()
	if err != nil {
		writeError(w, err, "get settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings handles PUT /api/settings.
//
//	@Summary	Replace application settings
//	@Tags		settings
//	@Accept		json
//	@Produce	json
//	@Param		body	body		settings.Settings	true	"New settings"
//	@Success	200		{object}	settings.Settings
//	@Security	BearerAuth
//	@Router		/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.settings.Save(s); err != nil {
		writeError(w, err, "update settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// --- AI ---

// provider builds an AI provider from the current settings.
func (h *Handler) provider() (ai.Provider, settings.Settings, error) {
	s, err := h.settings.Load()
	if err != nil {
		return nil, s, err
	}
	p, err := h.newProvider(ai.Config{
		Provider: s.Provider,
		APIKey:   s.OpenAIAPIKey,
		BaseURL:  s.OpenAIBaseURL,
		Model:    s.OpenAIModel,
	})
	return p, s, err
}

// Optimize handles POST /api/ai/optimize.
//
//	@Summary	Rewrite a prompt using the configured optimize template
//	@Tags		ai
//	@Accept		json
//	@Produce	json
//	@Param		body	body		OptimizeRequest	true	"Prompt to optimize"
//	@Success	200		{object}	OptimizeResponse
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/ai/optimize [post]
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("prompt is required"))
		return
	}

	p, s, err := h.provider()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("AI provider not configured"))
		return
	}
	template := s.OptimizePromptTemplate
	if template == "" {
		template = settings.DefaultOptimizeTemplate
	}
	temp := 0.7
	out, err := p.Generate(r.Context(), template, req.Prompt, ai.Params{Temperature: &temp})
	if err != nil {
		slog.Error("ai optimize failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("AI call failed"))
		return
	}
	writeJSON(w, http.StatusOK, OptimizeResponse{OptimizedPrompt: out})
}

// Run handles POST /api/ai/run.
//
//	@Summary	Execute a prompt (text completion or image generation)
//	@Tags		ai
//	@Accept		json
//	@Produce	json
//	@Param		body	body		RunRequest	true	"Prompt to run"
//	@Success	200		{object}	RunResponse
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/ai/run [post]
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	p, _, err := h.provider()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("AI provider not configured"))
		return
	}

	params := ai.Params{Model: req.Model}
	if raw, ok := req.Parameters["temperature"]; ok {
		if f, ok := raw.(float64); ok {
			params.Temperature = &f
		}
	}

	var result string
	if req.Type == models.TypeImage {
		if params.Model == "" {
			params.Model = "dall-e-3"
		}
		result, err = p.GenerateImage(r.Context(), req.Prompt, params)
	} else {
		result, err = p.Generate(r.Context(), "", req.Prompt, params)
	}
	if err != nil {
		slog.Error("ai run failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("AI call failed"))
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{Result: result})
}
