// Package models defines the domain types for Promptbox.
package models

import "time"

// Project types.
const (
	TypeText  = "text"
	TypeImage = "image"
)

// Category maps a top-level store directory to its sidecar metadata.
// ID and directory name are the same value; renaming a category is a
// physical directory rename.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Icon      string `json:"icon,omitempty"`
	SortOrder int64  `json:"sort_order"`
}

// Version is an immutable snapshot of a project's content. ID is a
// millisecond timestamp and is not guaranteed unique under very fast
// successive appends.
type Version struct {
	ID         int64          `json:"id"`
	VersionNum int            `json:"version_num"`
	Content    string         `json:"content"`
	Parameters map[string]any `json:"parameters,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Project is a stored prompt artifact. ID is derived once at creation
// (slug of the name plus a creation timestamp) and is also the shared
// basename of the project's two backing files. CategoryID always equals
// the name of the directory containing those files.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	CategoryID  string    `json:"category_id"`
	IsFavorite  bool      `json:"is_favorite"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Versions    []Version `json:"versions"`

	// CurrentContent is the body of the content file. It is never
	// stored in the metadata file.
	CurrentContent string `json:"current_content,omitempty"`
}

// ProjectCreate holds the fields accepted when creating a project.
type ProjectCreate struct {
	Name        string
	Description string
	Tags        []string
	Type        string
}

// ProjectUpdate holds a partial update: nil fields are left untouched.
// CategoryID triggers a move when it differs from the current category.
type ProjectUpdate struct {
	Name           *string   `json:"name,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
	IsFavorite     *bool     `json:"is_favorite,omitempty"`
	CategoryID     *string   `json:"category_id,omitempty"`
	CurrentContent *string   `json:"current_content,omitempty"`
}

// CategoryUpdate holds a partial category edit. Color and Icon are only
// overwritten when supplied.
type CategoryUpdate struct {
	Name  *string
	Color *string
	Icon  *string
}

// CategoryOrder is one entry of a reorder request.
type CategoryOrder struct {
	ID        string `json:"id"`
	SortOrder int64  `json:"sort_order"`
}
