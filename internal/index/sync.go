package index

import (
	"encoding/json"
	"log/slog"

	"github.com/starford/promptbox/internal/checksum"
	"github.com/starford/promptbox/internal/models"
	"github.com/starford/promptbox/internal/store"
)

// Sync walks the store and brings the index up to date:
//   - new/changed projects are upserted
//   - projects removed from disk are deleted from the index
//
// Reads go through the store's side-effect-free view, so syncing never
// triggers a legacy migration.
func Sync(db *DB, st *store.Store, logger *slog.Logger) error {
	projects, err := st.Projects()
	if err != nil {
		return err
	}

	indexed, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		disk[p.ID] = struct{}{}

		row, body := RowFromProject(p)
		if indexed[p.ID] == row.Checksum {
			continue
		}
		if err := db.UpsertProject(row, body); err != nil {
			logger.Warn("sync: index failed", slog.String("id", p.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", p.ID))
		}
	}

	// Remove stale entries.
	for id := range indexed {
		if _, ok := disk[id]; !ok {
			if err := db.DeleteProject(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

// RowFromProject converts a store view into an index row and the body
// to index. The checksum digests the full serialized view so any field
// change invalidates.
func RowFromProject(p models.Project) (ProjectRow, string) {
	raw, _ := json.Marshal(p)
	return ProjectRow{
		ID:          p.ID,
		Category:    p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Tags:        p.Tags,
		Favorite:    p.IsFavorite,
		Checksum:    checksum.Sum(raw),
		UpdatedAt:   p.UpdatedAt,
	}, p.CurrentContent
}
