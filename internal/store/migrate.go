package store

import (
	"fmt"
	"os"
	"time"

	"github.com/starford/promptbox/internal/header"
	"github.com/starford/promptbox/internal/models"
)

// migrate converts a legacy single-file project to the split encoding.
// Preconditions (enforced by the caller via DetectFormat): the content
// file exists and the metadata file does not.
//
// The metadata file is fully written before the content file is
// rewritten, so a failed migration never destroys the original legacy
// file. A header-less file yields (nil, nil) and no write at all; the
// caller synthesizes transient defaults instead.
func (s *Store) migrate(category, basename string) (*models.Project, error) {
	path, err := s.contentPath(category, basename)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read legacy file: %w", err)
	}

	fields, body := header.Parse(raw)
	if fields == nil {
		return nil, nil
	}

	p := projectFromHeader(category, basename, fields, time.Now().UTC())
	if err := s.writeMeta(p); err != nil {
		return nil, err
	}
	if err := atomicWrite(path, []byte(body)); err != nil {
		return nil, err
	}
	p.CurrentContent = body
	return p, nil
}

// projectFromHeader normalizes a parsed legacy header into a full
// metadata record. Absent fields take the documented defaults.
func projectFromHeader(category, basename string, f header.Fields, now time.Time) *models.Project {
	p := &models.Project{
		ID:          f.Str("id"),
		Name:        f.Str("name"),
		Description: f.Str("description"),
		Tags:        f.StrSlice("tags"),
		CategoryID:  category,
		IsFavorite:  f.Bool("is_favorite"),
		Type:        f.Str("type"),
		CreatedAt:   f.Time("created_at", now),
		UpdatedAt:   f.Time("updated_at", now),
		Versions:    []models.Version{},
	}
	if p.ID == "" {
		p.ID = basename
	}
	if p.Name == "" {
		p.Name = basename
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Type == "" {
		p.Type = models.TypeText
	}
	return p
}

// synthesize builds the transient default record for a header-less
// legacy file. Nothing is persisted; repeated reads re-synthesize.
func synthesize(category, basename, body string, now time.Time) *models.Project {
	return &models.Project{
		ID:             basename,
		Name:           basename,
		Tags:           []string{},
		CategoryID:     category,
		Type:           models.TypeText,
		CreatedAt:      now,
		UpdatedAt:      now,
		Versions:       []models.Version{},
		CurrentContent: body,
	}
}
