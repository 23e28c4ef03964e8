package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	s, err := fs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Provider != "openai" || s.OpenAIModel != "gpt-3.5-turbo" {
		t.Errorf("defaults = %+v", s)
	}
	if s.OptimizePromptTemplate == "" {
		t.Error("optimize template default missing")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	fs := NewFileStore(path)

	s := Defaults()
	s.OpenAIAPIKey = "sk-test"
	s.OpenAIModel = "gpt-4"
	if err := fs.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.OpenAIAPIKey != "sk-test" || got.OpenAIModel != "gpt-4" {
		t.Errorf("got = %+v", got)
	}
}

func TestLoad_PartialFileMergedOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"openai_model":"custom"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := NewFileStore(path)
	s, err := fs.Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.OpenAIModel != "custom" {
		t.Errorf("model = %q", s.OpenAIModel)
	}
	if s.OpenAIBaseURL != "https://api.openai.com/v1" {
		t.Errorf("base url default lost: %q", s.OpenAIBaseURL)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	_ = os.WriteFile(path, []byte("{not json"), 0o644)
	fs := NewFileStore(path)
	if _, err := fs.Load(); err == nil {
		t.Error("expected error for corrupt settings")
	}
}
