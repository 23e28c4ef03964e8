// Package projectservice coordinates the filesystem store, the derived
// search index, and the event broker. HTTP handlers and MCP tools call
// into this layer rather than the store directly.
package projectservice

import (
	"context"
	"sort"
	"strings"

	"github.com/starford/promptbox/internal/index"
	"github.com/starford/promptbox/internal/models"
	"github.com/starford/promptbox/internal/store"
)

// Notifier receives project change notifications. Satisfied by the SSE
// broker; a nil Notifier disables notifications.
type Notifier interface {
	PublishProjectEvent(kind, id string)
}

// Service coordinates store and index operations.
type Service struct {
	store    *store.Store
	db       *index.DB
	notifier Notifier
}

// NewService creates a project service. db and notifier may be nil; the
// service then degrades to store-only operation (search scans the store).
func NewService(st *store.Store, db *index.DB, notifier Notifier) *Service {
	return &Service{store: st, db: db, notifier: notifier}
}

// Store exposes the underlying store for read-only collaborators.
func (s *Service) Store() *store.Store {
	return s.store
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Category string
	Favorite *bool
	Search   string
}

// List returns project summaries newest-first, optionally filtered.
// Listing is a read-only view: legacy files are interpreted in place,
// never migrated. Search matches name, description, tags, and content.
func (s *Service) List(_ context.Context, f ListFilter) ([]models.Project, error) {
	projects, err := s.store.Projects()
	if err != nil {
		return nil, err
	}

	var matched map[string]struct{}
	if f.Search != "" {
		matched = s.searchIDs(f.Search)
	}

	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if f.Category != "" && p.CategoryID != f.Category {
			continue
		}
		if f.Favorite != nil && p.IsFavorite != *f.Favorite {
			continue
		}
		if matched != nil {
			if _, ok := matched[p.ID]; !ok {
				continue
			}
		}
		// Lists carry metadata only.
		p.CurrentContent = ""
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// searchIDs resolves a query to a set of project ids, preferring the
// index and falling back to a store scan when no index is attached.
func (s *Service) searchIDs(query string) map[string]struct{} {
	ids := make(map[string]struct{})
	if s.db != nil {
		if hits, err := s.db.Search(query, 500); err == nil {
			for _, h := range hits {
				ids[h.ID] = struct{}{}
			}
			return ids
		}
	}
	projects, err := s.store.Projects()
	if err != nil {
		return ids
	}
	for _, p := range projects {
		if matchProject(p, query) {
			ids[p.ID] = struct{}{}
		}
	}
	return ids
}

// Get returns the full project, including current content. Reading a
// legacy project migrates it to the split layout.
func (s *Service) Get(_ context.Context, id string) (*models.Project, error) {
	p, err := s.store.GetProject(id)
	if err != nil {
		return nil, err
	}
	s.reindex(p)
	return p, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.Search(query, limit)
}

// Create makes a new project in the category and announces it.
func (s *Service) Create(_ context.Context, category string, fields models.ProjectCreate) (*models.Project, error) {
	p, err := s.store.CreateProject(category, fields)
	if err != nil {
		return nil, err
	}
	s.reindex(p)
	s.notify("created", p.ID)
	return p, nil
}

// Update applies a partial update. A category_id differing from the
// project's current category moves the project's files to the target
// category directory.
func (s *Service) Update(_ context.Context, id string, upd models.ProjectUpdate) (*models.Project, error) {
	p, err := s.store.UpdateProject(id, upd)
	if err != nil {
		return nil, err
	}
	if upd.CategoryID != nil && *upd.CategoryID != p.CategoryID {
		p, err = s.store.MoveProject(id, *upd.CategoryID)
		if err != nil {
			return nil, err
		}
	}
	s.reindex(p)
	s.notify("updated", p.ID)
	return p, nil
}

// Delete removes a project from the store and index.
func (s *Service) Delete(_ context.Context, id string) error {
	if err := s.store.DeleteProject(id); err != nil {
		return err
	}
	if s.db != nil {
		_ = s.db.DeleteProject(id)
	}
	s.notify("deleted", id)
	return nil
}

// ToggleFavorite flips the favorite flag.
func (s *Service) ToggleFavorite(_ context.Context, id string) (*models.Project, error) {
	p, err := s.store.ToggleFavorite(id)
	if err != nil {
		return nil, err
	}
	s.reindex(p)
	s.notify("updated", p.ID)
	return p, nil
}

// AppendVersion snapshots content into the project's history and makes
// it the current content.
func (s *Service) AppendVersion(_ context.Context, id, content string, parameters map[string]any) (*models.Version, error) {
	v, err := s.store.AppendVersion(id, content, parameters)
	if err != nil {
		return nil, err
	}
	if p, perr := s.store.GetProject(id); perr == nil {
		s.reindex(p)
	}
	s.notify("updated", id)
	return v, nil
}

// Versions returns the version history, newest first.
func (s *Service) Versions(_ context.Context, id string) ([]models.Version, error) {
	return s.store.Versions(id)
}

// Categories returns all categories sorted by sort_order.
func (s *Service) Categories(_ context.Context) ([]models.Category, error) {
	return s.store.Categories()
}

// CreateCategory makes a new category directory with its sidecar.
func (s *Service) CreateCategory(_ context.Context, name, color, icon string) (*models.Category, error) {
	return s.store.CreateCategory(name, color, icon)
}

// UpdateCategory renames and/or restyles a category. A rename moves the
// directory, so every contained project changes identity paths; the
// index is rebuilt from the store afterwards.
func (s *Service) UpdateCategory(_ context.Context, name string, upd models.CategoryUpdate) (*models.Category, error) {
	cat, err := s.store.RenameCategory(name, upd)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil && *upd.Name != name {
		s.resync()
	}
	return cat, nil
}

// ReorderCategories applies new sort orders. Unknown ids are skipped.
func (s *Service) ReorderCategories(_ context.Context, items []models.CategoryOrder) error {
	return s.store.ReorderCategories(items)
}

// DeleteCategory removes a category directory and all projects in it.
func (s *Service) DeleteCategory(_ context.Context, name string) error {
	if err := s.store.DeleteCategory(name); err != nil {
		return err
	}
	s.resync()
	return nil
}

// reindex refreshes the index row for one project. Index failures are
// tolerated: the filesystem stays the source of truth and the next sync
// repairs the index.
func (s *Service) reindex(p *models.Project) {
	if s.db == nil || p == nil {
		return
	}
	row, body := index.RowFromProject(*p)
	_ = s.db.UpsertProject(row, body)
}

// resync rebuilds index state after bulk moves (category rename/delete).
func (s *Service) resync() {
	if s.db == nil {
		return
	}
	projects, err := s.store.Projects()
	if err != nil {
		return
	}
	live := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		live[p.ID] = struct{}{}
		row, body := index.RowFromProject(p)
		_ = s.db.UpsertProject(row, body)
	}
	if indexed, err := s.db.AllChecksums(); err == nil {
		for id := range indexed {
			if _, ok := live[id]; !ok {
				_ = s.db.DeleteProject(id)
			}
		}
	}
}

func (s *Service) notify(kind, id string) {
	if s.notifier != nil {
		s.notifier.PublishProjectEvent(kind, id)
	}
}

// matchProject is the index-free search fallback: case-insensitive
// substring match over name, description, tags, and content.
func matchProject(p models.Project, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.CurrentContent), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
