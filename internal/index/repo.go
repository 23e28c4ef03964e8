package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProjectRow represents a row in the projects table.
type ProjectRow struct {
	ID          string
	Category    string
	Name        string
	Description string
	Tags        []string
	Favorite    bool
	Checksum    string
	UpdatedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Snippet  string `json:"snippet"`
}

// UpsertProject inserts or replaces a project row and its FTS entry
// within a transaction.
func (db *DB) UpsertProject(r ProjectRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(r.Tags)

	_, err = tx.Exec(`
		INSERT INTO projects (id, category, name, description, tags, body, favorite, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category    = excluded.category,
			name        = excluded.name,
			description = excluded.description,
			tags        = excluded.tags,
			body        = excluded.body,
			favorite    = excluded.favorite,
			checksum    = excluded.checksum,
			updated_at  = excluded.updated_at
	`, r.ID, r.Category, r.Name, r.Description, string(tagsJSON), body,
		boolToInt(r.Favorite), r.Checksum, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert project: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, r.ID, r.Name, r.Description, body, r.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteProject removes a project and its FTS entry.
func (db *DB) DeleteProject(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM projects WHERE id = ?`, id)

	return tx.Commit()
}

// AllChecksums returns the stored checksum per indexed project id.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
