package index

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/promptbox/internal/apperr"
	"github.com/starford/promptbox/internal/store"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on the store root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation.
//
// Both halves of a project (metadata .json and content .md) map onto the
// same index entry, so either file changing refreshes the whole row.
// New category directories created at runtime are automatically added to
// the watch list. Rename events trigger a reconciliation pass that
// removes stale index entries whose files no longer exist on disk.
func Watch(ctx context.Context, db *DB, st *store.Store, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := st.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, st, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// --- Handle new directories: add to watcher ---
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Index any projects already in the new directory.
					indexNewDir(db, st, absPath, logger, cb)
					continue
				}
			}

			category, id, ok := splitProjectPath(root, absPath)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				if idxErr := indexProject(db, st, category, id); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("id", id), slog.String("error", idxErr.Error()))
					continue
				}
				logger.Debug("watcher: indexed", slog.String("id", id), slog.String("op", kind))
				if cb != nil {
					cb(kind, id)
				}

			case ev.Op&fsnotify.Remove != 0:
				// One half of the pair may still exist.
				if _, format, viewErr := st.View(category, id); viewErr == nil && format != store.FormatAbsent {
					if idxErr := indexProject(db, st, category, id); idxErr == nil {
						logger.Debug("watcher: reindexed partial", slog.String("id", id))
						if cb != nil {
							cb("updated", id)
						}
					}
					continue
				}
				if delErr := db.DeleteProject(id); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("id", id), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("id", id))
				if cb != nil {
					cb("deleted", id)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new
				// path will arrive as a separate Create event (if it
				// stays within a watched dir). We delete the old entry
				// immediately and schedule a short reconciliation pass
				// to catch any stragglers.
				if delErr := db.DeleteProject(id); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("id", id), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("id", id))
					if cb != nil {
						cb("deleted", id)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// splitProjectPath maps an absolute event path onto a (category, project id)
// pair. Returns ok=false for paths that are not project files: the category
// sidecar, dot-files, temp files, settings, or anything not directly under a
// category directory.
func splitProjectPath(root, absPath string) (category, id string, ok bool) {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 {
		return "", "", false
	}
	category, file := parts[0], parts[1]
	if strings.HasPrefix(category, ".") || strings.HasPrefix(file, ".") {
		return "", "", false
	}
	if file == "_category.json" || file == "settings.json" {
		return "", "", false
	}
	ext := filepath.Ext(file)
	if ext != ".md" && ext != ".json" {
		return "", "", false
	}
	return category, strings.TrimSuffix(file, ext), true
}

// indexProject refreshes the index row for a single project from its
// on-disk state, without migrating legacy files.
func indexProject(db *DB, st *store.Store, category, id string) error {
	p, _, err := st.View(category, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return db.DeleteProject(id)
		}
		return err
	}
	row, body := RowFromProject(*p)
	return db.UpsertProject(row, body)
}

// reconcileAfterRename does a full pass against the store: index entries
// without a corresponding project on disk are removed, and on-disk
// projects that changed or appeared are re-indexed.
func reconcileAfterRename(db *DB, st *store.Store, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	projects, err := st.Projects()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		disk[p.ID] = struct{}{}
	}

	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if delErr := db.DeleteProject(id); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("id", id))
				if cb != nil {
					cb("deleted", id)
				}
			}
		}
	}

	for _, p := range projects {
		row, body := RowFromProject(p)
		if checksums[p.ID] == row.Checksum {
			continue
		}
		if idxErr := db.UpsertProject(row, body); idxErr == nil {
			logger.Debug("reconcile: indexed new", slog.String("id", p.ID))
			if cb != nil {
				cb("created", p.ID)
			}
		}
	}
}

// indexNewDir indexes any projects found in a newly created category
// directory.
func indexNewDir(db *DB, st *store.Store, dirPath string, logger *slog.Logger, cb EventCallback) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return
	}
	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		category, id, ok := splitProjectPath(st.Root(), filepath.Join(dirPath, e.Name()))
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if idxErr := indexProject(db, st, category, id); idxErr == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("id", id))
			if cb != nil {
				cb("created", id)
			}
		}
	}
}

// addDirsRecursive adds dir and all its non-hidden subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	if err := w.Add(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := addDirsRecursive(w, filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
