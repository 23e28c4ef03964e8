//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS projects_fts USING fts5(
			id UNINDEXED,
			name,
			description,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, name, description, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO projects_fts (id, name, description, body, tags) VALUES (?, ?, ?, ?, ?)`,
		id, name, description, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE id = ?`, id)
}

// Search performs an FTS5 full-text search with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.id,
		       f.name,
		       p.category,
		       snippet(projects_fts, 3, '<b>', '</b>', '...', 64)
		FROM projects_fts f
		JOIN projects p ON p.id = f.id
		WHERE projects_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
