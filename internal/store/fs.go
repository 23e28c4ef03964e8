package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/promptbox/internal/apperr"
)

const (
	sidecarName = "_category.json"
	metaExt     = ".json"
	contentExt  = ".md"
)

// validName rejects names that would escape the store layout: empty
// strings, path separators, and dot prefixes (dot directories are
// invisible to the locator and to category listing).
func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", apperr.ErrValidation)
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("%w: name must not contain path separators: %s", apperr.ErrValidation, name)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: name must not start with a dot: %s", apperr.ErrValidation, name)
	}
	return nil
}

// join resolves parts against the store root and rejects any result
// that escapes it.
func (s *Store) join(parts ...string) (string, error) {
	joined := filepath.Join(s.root, filepath.Join(parts...))
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("store: resolve path: %w", err)
	}
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("store: path escapes root: %s", filepath.Join(parts...))
	}
	return abs, nil
}

func (s *Store) categoryDir(category string) (string, error) {
	if err := validName(category); err != nil {
		return "", err
	}
	return s.join(category)
}

func (s *Store) metaPath(category, id string) (string, error) {
	if err := validName(category); err != nil {
		return "", err
	}
	if err := validName(id); err != nil {
		return "", err
	}
	return s.join(category, id+metaExt)
}

func (s *Store) contentPath(category, id string) (string, error) {
	if err := validName(category); err != nil {
		return "", err
	}
	if err := validName(id); err != nil {
		return "", err
	}
	return s.join(category, id+contentExt)
}

// atomicWrite writes content via a temp file in the target directory
// followed by a rename, so readers never observe a half-written file.
func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".promptbox-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}
