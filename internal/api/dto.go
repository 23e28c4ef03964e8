package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/starford/promptbox/internal/models"
)

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name  string `json:"name" example:"Marketing" validate:"required"`
	Color string `json:"color,omitempty" example:"blue"`
	Icon  string `json:"icon,omitempty" example:"megaphone"`
}

// Validate implements request validation.
func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
	)
}

// UpdateCategoryRequest is the request body for renaming/restyling a
// category. Absent fields are left unchanged.
type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Name        string   `json:"name" example:"Ad Copy" validate:"required"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Type        string   `json:"type,omitempty" example:"text"`
	CategoryID  string   `json:"category_id,omitempty" example:"marketing"`
}

// Validate implements request validation.
func (r CreateProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Type, validation.In("", models.TypeText, models.TypeImage)),
	)
}

// UpdateProjectRequest mirrors the store's partial update contract.
type UpdateProjectRequest = models.ProjectUpdate

// CreateVersionRequest is the request body for snapshotting a version.
type CreateVersionRequest struct {
	Content    string         `json:"content" validate:"required"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Validate implements request validation.
func (r CreateVersionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// OptimizeRequest asks the configured AI provider to rewrite a prompt.
type OptimizeRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// OptimizeResponse carries the rewritten prompt.
type OptimizeResponse struct {
	OptimizedPrompt string `json:"optimized_prompt" validate:"required"`
}

// RunRequest executes a prompt against the configured AI provider.
type RunRequest struct {
	Prompt     string         `json:"prompt" validate:"required"`
	Type       string         `json:"type,omitempty" example:"text"`
	Model      string         `json:"model,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Validate implements request validation.
func (r RunRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required),
		validation.Field(&r.Type, validation.In("", models.TypeText, models.TypeImage)),
	)
}

// RunResponse carries the generation result: text content, or an image
// URL for image projects.
type RunResponse struct {
	Result string `json:"result" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
	Snippet  string `json:"snippet,omitempty"`
}

// ProjectListResponse wraps project listings.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects" validate:"required"`
	Total    int              `json:"total" example:"42" validate:"required"`
}
