package store

import (
	"sort"
	"time"

	"github.com/starford/promptbox/internal/models"
)

// AppendVersion snapshots content as the next version of a project.
// version_num is count+1, never reassigned; the version id is a
// millisecond timestamp, not guaranteed unique under very fast
// successive appends. The whole metadata file is rewritten (history is
// embedded, there is no separate log) and the content file is
// overwritten with the new version's content.
func (s *Store) AppendVersion(id, content string, parameters map[string]any) (*models.Version, error) {
	category, err := s.Resolve(id)
	if err != nil {
		return nil, err
	}
	p, err := s.Project(category, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	v := models.Version{
		ID:         now.UnixMilli(),
		VersionNum: len(p.Versions) + 1,
		Content:    content,
		Parameters: parameters,
		CreatedAt:  now.UTC(),
	}
	p.Versions = append(p.Versions, v)
	p.UpdatedAt = now.UTC()

	if err := s.writeMeta(p); err != nil {
		return nil, err
	}
	contentFile, err := s.contentPath(category, id)
	if err != nil {
		return nil, err
	}
	if err := atomicWrite(contentFile, []byte(content)); err != nil {
		return nil, err
	}
	return &v, nil
}

// Versions lists a project's history sorted by version_num descending.
func (s *Store) Versions(id string) ([]models.Version, error) {
	p, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}
	out := make([]models.Version, len(p.Versions))
	copy(out, p.Versions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VersionNum > out[j].VersionNum
	})
	return out, nil
}
