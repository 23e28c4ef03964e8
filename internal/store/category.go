package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/starford/promptbox/internal/apperr"
	"github.com/starford/promptbox/internal/models"
)

// defaultSortOrder places categories without an explicit order at the
// end of the list.
const defaultSortOrder = 99

// Categories enumerates the non-dot top-level directories, merges each
// sidecar over the defaults, and returns them sorted ascending by
// sort_order. Tie order follows directory enumeration and must not be
// relied upon.
func (s *Store) Categories() ([]models.Category, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	out := []models.Category{}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, s.loadCategory(e.Name()))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

// CreateCategory creates the directory and writes its sidecar with
// sort_order set to the creation timestamp, so new categories append
// at the end. Fails with Conflict when the directory already exists.
func (s *Store) CreateCategory(name, color, icon string) (*models.Category, error) {
	dir, err := s.categoryDir(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: category %s already exists", apperr.ErrConflict, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create category dir: %w", err)
	}
	if color == "" {
		color = "blue"
	}
	cat := models.Category{
		ID:        name,
		Name:      name,
		Color:     color,
		Icon:      icon,
		SortOrder: time.Now().Unix(),
	}
	if err := s.writeCategory(cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// RenameCategory applies a partial edit. A name change is a physical
// directory rename performed before the sidecar rewrite; color and
// icon are only overwritten when supplied.
func (s *Store) RenameCategory(name string, upd models.CategoryUpdate) (*models.Category, error) {
	dir, err := s.categoryDir(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: category %s", apperr.ErrNotFound, name)
	}

	newName := name
	if upd.Name != nil && *upd.Name != "" && *upd.Name != name {
		newName = *upd.Name
		target, err := s.categoryDir(newName)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(target); err == nil {
			return nil, fmt.Errorf("%w: category %s already exists", apperr.ErrConflict, newName)
		}
		if err := os.Rename(dir, target); err != nil {
			return nil, fmt.Errorf("store: rename category: %w", err)
		}
	}

	cat := s.loadCategory(newName)
	cat.ID = newName
	cat.Name = newName
	if upd.Color != nil {
		cat.Color = *upd.Color
	}
	if upd.Icon != nil {
		cat.Icon = *upd.Icon
	}
	if err := s.writeCategory(cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// ReorderCategories writes the supplied sort orders. Unknown ids are
// skipped, matching the original behaviour.
func (s *Store) ReorderCategories(items []models.CategoryOrder) error {
	for _, item := range items {
		dir, err := s.categoryDir(item.ID)
		if err != nil {
			return err
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		cat := s.loadCategory(item.ID)
		cat.SortOrder = item.SortOrder
		if err := s.writeCategory(cat); err != nil {
			return err
		}
	}
	return nil
}

// DeleteCategory recursively removes the directory and everything in
// it. Destructive: contained projects are gone, no orphan check.
func (s *Store) DeleteCategory(name string) error {
	dir, err := s.categoryDir(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: category %s", apperr.ErrNotFound, name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	return nil
}

// loadCategory merges the sidecar (if present) over the defaults. The
// directory name is authoritative for the id.
func (s *Store) loadCategory(name string) models.Category {
	cat := models.Category{
		ID:        name,
		Name:      name,
		Color:     "blue",
		SortOrder: defaultSortOrder,
	}
	path := filepath.Join(s.root, name, sidecarName)
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &cat)
	}
	cat.ID = name
	if cat.Name == "" {
		cat.Name = name
	}
	if cat.Color == "" {
		cat.Color = "blue"
	}
	return cat
}

func (s *Store) writeCategory(cat models.Category) error {
	path, err := s.join(cat.ID, sidecarName)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal category: %w", err)
	}
	if err := atomicWrite(path, append(data, '\n')); err != nil {
		return fmt.Errorf("store: write category sidecar: %w", err)
	}
	return nil
}
