package store

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// writeRaw drops a file directly into the store tree, bypassing the
// store API, to simulate pre-existing (legacy) data.
func writeRaw(t *testing.T, s *Store, category, name, content string) {
	t.Helper()
	dir := filepath.Join(s.Root(), category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readRaw(t *testing.T, s *Store, category, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.Root(), category, name))
	if err != nil {
		t.Fatalf("read %s/%s: %v", category, name, err)
	}
	return string(data)
}

func exists(s *Store, category, name string) bool {
	_, err := os.Stat(filepath.Join(s.Root(), category, name))
	return err == nil
}

func TestNew_NonExistentRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent root")
	}
}

func TestNew_FileNotDir(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "root-*")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	if _, err := New(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestDetectFormat(t *testing.T) {
	s := tempStore(t)
	writeRaw(t, s, "cat", "legacy.md", "body")
	writeRaw(t, s, "cat", "split.md", "body")
	writeRaw(t, s, "cat", "split.json", `{"id":"split","name":"Split"}`)
	writeRaw(t, s, "cat", "metaonly.json", `{"id":"metaonly","name":"M"}`)

	cases := []struct {
		id   string
		want Format
	}{
		{"legacy", FormatLegacy},
		{"split", FormatSplit},
		{"metaonly", FormatSplit},
		{"ghost", FormatAbsent},
	}
	for _, c := range cases {
		got, err := s.DetectFormat("cat", c.id)
		if err != nil {
			t.Fatalf("DetectFormat(%s): %v", c.id, err)
		}
		if got != c.want {
			t.Errorf("DetectFormat(%s) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestValidName(t *testing.T) {
	bad := []string{"", "  ", "a/b", `a\b`, ".hidden", "..", "../escape"}
	for _, n := range bad {
		if err := validName(n); err == nil {
			t.Errorf("validName(%q) should fail", n)
		}
	}
	good := []string{"Marketing", "ad-copy-123", "创意写作"}
	for _, n := range good {
		if err := validName(n); err != nil {
			t.Errorf("validName(%q): %v", n, err)
		}
	}
}
