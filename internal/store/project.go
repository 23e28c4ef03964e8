package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/starford/promptbox/internal/apperr"
	"github.com/starford/promptbox/internal/header"
	"github.com/starford/promptbox/internal/models"
	"github.com/starford/promptbox/internal/slug"
)

// Project reads a project from a known category. A legacy file is
// migrated to the split encoding on the way; a header-less legacy file
// yields a synthesized default record without persisting anything.
func (s *Store) Project(category, id string) (*models.Project, error) {
	format, err := s.DetectFormat(category, id)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSplit:
		p, err := s.readMeta(category, id)
		if err != nil {
			return nil, err
		}
		p.CurrentContent = s.readBody(category, id)
		return p, nil
	case FormatLegacy:
		p, err := s.migrate(category, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
		path, err := s.contentPath(category, id)
		if err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("store: read content: %w", err)
		}
		return synthesize(category, id, string(raw), time.Now().UTC()), nil
	default:
		return nil, fmt.Errorf("%w: project %s in %s", apperr.ErrNotFound, id, category)
	}
}

// GetProject locates the project's category and reads it.
func (s *Store) GetProject(id string) (*models.Project, error) {
	category, err := s.Resolve(id)
	if err != nil {
		return nil, err
	}
	return s.Project(category, id)
}

// View is the side-effect-free read used by listing and indexing: a
// legacy file is interpreted in place, never migrated.
func (s *Store) View(category, id string) (*models.Project, Format, error) {
	format, err := s.DetectFormat(category, id)
	if err != nil {
		return nil, FormatAbsent, err
	}
	switch format {
	case FormatSplit:
		p, err := s.readMeta(category, id)
		if err != nil {
			return nil, format, err
		}
		p.CurrentContent = s.readBody(category, id)
		return p, format, nil
	case FormatLegacy:
		path, err := s.contentPath(category, id)
		if err != nil {
			return nil, format, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, format, fmt.Errorf("store: read content: %w", err)
		}
		fields, body := header.Parse(raw)
		if fields == nil {
			return synthesize(category, id, string(raw), time.Now().UTC()), format, nil
		}
		p := projectFromHeader(category, id, fields, time.Now().UTC())
		p.CurrentContent = body
		return p, format, nil
	default:
		return nil, format, fmt.Errorf("%w: project %s in %s", apperr.ErrNotFound, id, category)
	}
}

// Projects returns a read-only view of every project in the store.
// Unreadable entries are skipped; ordering is unspecified.
func (s *Store) Projects() ([]models.Project, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("store: scan root: %w", err)
	}
	out := []models.Project{}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ids, err := s.projectIDs(e.Name())
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			p, _, err := s.View(e.Name(), id)
			if err != nil {
				continue
			}
			out = append(out, *p)
		}
	}
	return out, nil
}

// projectIDs collects the distinct basenames of project files in a
// category directory.
func (s *Store) projectIDs(category string) ([]string, error) {
	dir, err := s.categoryDir(category)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("store: scan category %s: %w", category, err)
	}
	seen := map[string]struct{}{}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == sidecarName || strings.HasPrefix(name, ".") {
			continue
		}
		var id string
		switch {
		case strings.HasSuffix(name, metaExt):
			id = strings.TrimSuffix(name, metaExt)
		case strings.HasSuffix(name, contentExt):
			id = strings.TrimSuffix(name, contentExt)
		default:
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateProject writes a new split-format project: metadata with all
// defaults and an empty content file. The id is derived once from the
// slugified name plus the creation timestamp and never changes.
func (s *Store) CreateProject(category string, fields models.ProjectCreate) (*models.Project, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return nil, fmt.Errorf("%w: project name is required", apperr.ErrValidation)
	}
	dir, err := s.categoryDir(category)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create category dir: %w", err)
	}

	now := time.Now()
	p := &models.Project{
		ID:          slug.ID(fields.Name, now),
		Name:        fields.Name,
		Description: fields.Description,
		Tags:        fields.Tags,
		CategoryID:  category,
		Type:        fields.Type,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
		Versions:    []models.Version{},
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Type == "" {
		p.Type = models.TypeText
	}

	if err := s.writeMeta(p); err != nil {
		return nil, err
	}
	contentFile, err := s.contentPath(category, p.ID)
	if err != nil {
		return nil, err
	}
	if err := atomicWrite(contentFile, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProject overwrites only the supplied metadata fields, bumps
// updated_at, and persists. When content is supplied the content file
// is overwritten verbatim in the same operation. A legacy project is
// migrated first. CategoryID is ignored here; moves go through
// MoveProject.
func (s *Store) UpdateProject(id string, upd models.ProjectUpdate) (*models.Project, error) {
	category, err := s.Resolve(id)
	if err != nil {
		return nil, err
	}
	p, err := s.Project(category, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, fmt.Errorf("%w: project name must not be empty", apperr.ErrValidation)
		}
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Tags != nil {
		p.Tags = *upd.Tags
		if p.Tags == nil {
			p.Tags = []string{}
		}
	}
	if upd.IsFavorite != nil {
		p.IsFavorite = *upd.IsFavorite
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.writeMeta(p); err != nil {
		return nil, err
	}
	if upd.CurrentContent != nil {
		contentFile, err := s.contentPath(category, id)
		if err != nil {
			return nil, err
		}
		if err := atomicWrite(contentFile, []byte(*upd.CurrentContent)); err != nil {
			return nil, err
		}
		p.CurrentContent = *upd.CurrentContent
	}
	return p, nil
}

// MoveProject relocates a project's files to another category. The
// sequence is: write metadata at the new location, move the content
// file if present, remove the old metadata file. A crash mid-sequence
// can leave the project visible in both categories; recovery is
// undefined, matching the original.
func (s *Store) MoveProject(id, target string) (*models.Project, error) {
	if err := validName(target); err != nil {
		return nil, err
	}
	category, err := s.Resolve(id)
	if err != nil {
		return nil, err
	}
	p, err := s.Project(category, id) // forces migration; metadata now exists
	if err != nil {
		return nil, err
	}
	if category == target {
		return p, nil
	}

	targetDir, err := s.categoryDir(target)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create target category: %w", err)
	}

	p.CategoryID = target
	p.UpdatedAt = time.Now().UTC()
	if err := s.writeMeta(p); err != nil {
		return nil, err
	}

	oldContent, err := s.contentPath(category, id)
	if err != nil {
		return nil, err
	}
	newContent, err := s.contentPath(target, id)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(oldContent); err == nil {
		if err := os.Rename(oldContent, newContent); err != nil {
			return nil, fmt.Errorf("store: move content: %w", err)
		}
	}

	oldMeta, err := s.metaPath(category, id)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(oldMeta); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("store: remove old metadata: %w", err)
	}
	return p, nil
}

// DeleteProject removes both backing files. Resolve guarantees at
// least one existed; individual removals tolerate absence.
func (s *Store) DeleteProject(id string) error {
	category, err := s.Resolve(id)
	if err != nil {
		return err
	}
	meta, err := s.metaPath(category, id)
	if err != nil {
		return err
	}
	if err := os.Remove(meta); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete metadata: %w", err)
	}
	content, err := s.contentPath(category, id)
	if err != nil {
		return err
	}
	if err := os.Remove(content); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete content: %w", err)
	}
	return nil
}

// ToggleFavorite flips is_favorite in a read-modify-write cycle with
// no isolation from concurrent writers of the same project.
func (s *Store) ToggleFavorite(id string) (*models.Project, error) {
	category, err := s.Resolve(id)
	if err != nil {
		return nil, err
	}
	p, err := s.Project(category, id)
	if err != nil {
		return nil, err
	}
	p.IsFavorite = !p.IsFavorite
	p.UpdatedAt = time.Now().UTC()
	if err := s.writeMeta(p); err != nil {
		return nil, err
	}
	return p, nil
}

// readMeta loads the metadata sidecar. The containing directory is
// authoritative for category_id.
func (s *Store) readMeta(category, id string) (*models.Project, error) {
	path, err := s.metaPath(category, id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: project %s in %s", apperr.ErrNotFound, id, category)
		}
		return nil, fmt.Errorf("store: read metadata: %w", err)
	}
	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("store: parse metadata %s: %w", path, err)
	}
	p.CategoryID = category
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Versions == nil {
		p.Versions = []models.Version{}
	}
	if p.Type == "" {
		p.Type = models.TypeText
	}
	return &p, nil
}

// writeMeta persists the metadata sidecar. The body never goes into
// the metadata file.
func (s *Store) writeMeta(p *models.Project) error {
	path, err := s.metaPath(p.CategoryID, p.ID)
	if err != nil {
		return err
	}
	meta := *p
	meta.CurrentContent = ""
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal metadata: %w", err)
	}
	if err := atomicWrite(path, append(data, '\n')); err != nil {
		return fmt.Errorf("store: write metadata: %w", err)
	}
	return nil
}

// readBody returns the content file's body, or empty when missing.
func (s *Store) readBody(category, id string) string {
	path, err := s.contentPath(category, id)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
