// Package settings persists the flat application settings blob
// (settings.json at the store root). It is deliberately independent of
// project/category persistence and is injected into its consumers
// rather than accessed as process-wide state.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Settings is the flat config blob edited through the API.
type Settings struct {
	OpenAIAPIKey           string   `json:"openai_api_key"`
	OpenAIBaseURL          string   `json:"openai_base_url"`
	OpenAIModel            string   `json:"openai_model"`
	AvailableModels        []string `json:"available_models"`
	Provider               string   `json:"provider"`
	OptimizePromptTemplate string   `json:"optimize_prompt_template"`
}

// DefaultOptimizeTemplate is the system prompt used for optimize calls
// when no template has been configured.
const DefaultOptimizeTemplate = `You are a professional prompt engineer.
Rewrite the user's prompt so it is clearer and better structured while
preserving its intent: state the role, add missing context, make the
task explicit, and specify the output format.
Reply with the optimized prompt only, without commentary.`

// Defaults returns the settings used before anything is saved.
func Defaults() Settings {
	return Settings{
		OpenAIBaseURL:          "https://api.openai.com/v1",
		OpenAIModel:            "gpt-3.5-turbo",
		AvailableModels:        []string{"gpt-3.5-turbo", "gpt-4", "dall-e-3"},
		Provider:               "openai",
		OptimizePromptTemplate: DefaultOptimizeTemplate,
	}
}

// Store is the injected settings persistence interface.
type Store interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileStore keeps settings in a single JSON file. A mutex serializes
// Save cycles; Load always re-reads from disk.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore at path. The file is created lazily
// on first Save; until then Load returns the defaults.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the settings file, merging it over the defaults so that
// fields added after the file was written still get values.
func (f *FileStore) Load() (Settings, error) {
	s := Defaults()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("settings: read: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("settings: parse %s: %w", f.path, err)
	}
	return s, nil
}

// Save atomically rewrites the settings file.
func (f *FileStore) Save(s Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".settings-tmp-*")
	if err != nil {
		return fmt.Errorf("settings: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("settings: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("settings: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("settings: rename: %w", err)
	}
	return nil
}
