// Package store turns a directory tree into the project database:
// one directory per category, two files per project. A project is kept
// either in the legacy single-file encoding (metadata embedded as a
// header block in the content file) or in the split encoding (a .json
// metadata sidecar next to a pure-text .md body). Legacy projects are
// migrated to the split encoding on first access.
//
// The filesystem is the single source of truth: every operation
// re-reads from disk, there is no cache, no locking, and no
// transaction boundary. Concurrent read-modify-write cycles on the
// same project race last-write-wins.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the filesystem-backed project store rooted at a directory.
type Store struct {
	root string // absolute path to the store root
}

// New creates a Store rooted at the given directory, which must exist.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("store: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store: root is not a directory: %s", abs)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute store root path.
func (s *Store) Root() string {
	return s.root
}

// Format is the on-disk encoding of a project, inferred from file
// presence rather than stored anywhere.
type Format int

const (
	// FormatAbsent means neither backing file exists.
	FormatAbsent Format = iota
	// FormatLegacy means only the content file exists; metadata lives
	// in its embedded header block.
	FormatLegacy
	// FormatSplit means the metadata sidecar exists. The content file
	// may be missing, in which case the body reads as empty.
	FormatSplit
)

// DetectFormat is the single place that interprets file presence as a
// format state. The only transition is Legacy -> Split, fired by the
// first access that touches metadata.
func (s *Store) DetectFormat(category, id string) (Format, error) {
	meta, err := s.metaPath(category, id)
	if err != nil {
		return FormatAbsent, err
	}
	if _, err := os.Stat(meta); err == nil {
		return FormatSplit, nil
	}
	content, err := s.contentPath(category, id)
	if err != nil {
		return FormatAbsent, err
	}
	if _, err := os.Stat(content); err == nil {
		return FormatLegacy, nil
	}
	return FormatAbsent, nil
}
