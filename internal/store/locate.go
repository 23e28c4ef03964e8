package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/starford/promptbox/internal/apperr"
)

// Resolve returns the name of the category directory containing the
// project's files. It scans every non-dot top-level directory in
// enumeration order and returns the first hit; a duplicate id in a
// later directory is silently shadowed. Cost is linear in the number
// of categories and nothing serializes the scan against concurrent
// renames, so a rename mid-scan can yield a spurious NotFound.
func (s *Store) Resolve(id string) (string, error) {
	if err := validName(id); err != nil {
		return "", err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return "", fmt.Errorf("store: scan root: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		format, err := s.DetectFormat(e.Name(), id)
		if err != nil {
			return "", err
		}
		if format != FormatAbsent {
			return e.Name(), nil
		}
	}
	return "", fmt.Errorf("%w: project %s", apperr.ErrNotFound, id)
}
