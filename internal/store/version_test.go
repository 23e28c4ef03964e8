package store

import (
	"errors"
	"testing"

	"github.com/starford/promptbox/internal/apperr"
	"github.com/starford/promptbox/internal/models"
)

func TestAppendVersion_ScenarioAdCopy(t *testing.T) {
	s := tempStore(t)
	if _, err := s.CreateCategory("Marketing", "", ""); err != nil {
		t.Fatal(err)
	}
	p, err := s.CreateProject("Marketing", models.ProjectCreate{Name: "Ad Copy"})
	if err != nil {
		t.Fatal(err)
	}
	if p.CurrentContent != "" {
		t.Fatalf("current_content = %q, want empty", p.CurrentContent)
	}

	v1, err := s.AppendVersion(p.ID, "Buy now", nil)
	if err != nil {
		t.Fatalf("AppendVersion: %v", err)
	}
	if v1.VersionNum != 1 {
		t.Errorf("v1.version_num = %d", v1.VersionNum)
	}

	v2, err := s.AppendVersion(p.ID, "Buy now v2", map[string]any{"temperature": 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if v2.VersionNum != 2 {
		t.Errorf("v2.version_num = %d", v2.VersionNum)
	}

	list, err := s.Versions(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].VersionNum != 2 || list[0].Content != "Buy now v2" {
		t.Errorf("list[0] = %+v, want v2 first", list[0])
	}
	if list[1].VersionNum != 1 || list[1].Content != "Buy now" {
		t.Errorf("list[1] = %+v", list[1])
	}

	// Content file tracks the latest version.
	if disk := readRaw(t, s, "Marketing", p.ID+".md"); disk != "Buy now v2" {
		t.Errorf("content file = %q", disk)
	}
}

func TestAppendVersion_RoundTripLatest(t *testing.T) {
	s := tempStore(t)
	p, _ := s.CreateProject("c", models.ProjectCreate{Name: "RT"})
	const x = "content X"
	if _, err := s.AppendVersion(p.ID, x, nil); err != nil {
		t.Fatal(err)
	}
	list, err := s.Versions(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	maxEntry := list[0]
	for _, v := range list {
		if v.VersionNum > maxEntry.VersionNum {
			maxEntry = v
		}
	}
	if maxEntry.Content != x {
		t.Errorf("latest content = %q, want %q", maxEntry.Content, x)
	}
}

func TestAppendVersion_BumpsUpdatedAtAndPersistsHistory(t *testing.T) {
	s := tempStore(t)
	p, _ := s.CreateProject("c", models.ProjectCreate{Name: "Hist"})

	if _, err := s.AppendVersion(p.ID, "one", nil); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Versions) != 1 {
		t.Fatalf("versions = %d", len(got.Versions))
	}
	if got.UpdatedAt.Before(p.UpdatedAt) {
		t.Error("updated_at not bumped")
	}
}

func TestVersions_UnknownProject(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Versions("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAppendVersion_OnLegacyProjectMigratesFirst(t *testing.T) {
	s := tempStore(t)
	writeRaw(t, s, "c", "leg.md", "---\nname: Leg\n---\noriginal body")

	v, err := s.AppendVersion("leg", "new content", nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.VersionNum != 1 {
		t.Errorf("version_num = %d", v.VersionNum)
	}
	if !exists(s, "c", "leg.json") {
		t.Error("append should have forced migration")
	}
	if disk := readRaw(t, s, "c", "leg.md"); disk != "new content" {
		t.Errorf("content = %q", disk)
	}
}
