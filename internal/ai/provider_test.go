package ai

import (
	"context"
	"testing"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{Provider: "openai"}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "acme", APIKey: "k"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewDefaultsToOpenAI(t *testing.T) {
	for _, name := range []string{"", "openai", "OpenAI"} {
		p, err := New(Config{Provider: name, APIKey: "k", Model: "gpt-4"})
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if p.Name() != "openai" {
			t.Errorf("New(%q).Name() = %q, want openai", name, p.Name())
		}
	}
}

// stub verifies that downstream code can swap in a test double.
type stub struct{ out string }

func (s *stub) Generate(_ context.Context, _, _ string, _ Params) (string, error) {
	return s.out, nil
}
func (s *stub) GenerateImage(_ context.Context, _ string, _ Params) (string, error) {
	return "https://example.com/" + s.out, nil
}
func (s *stub) Name() string { return "stub" }

func TestProviderInterface(t *testing.T) {
	var p Provider = &stub{out: "hello"}
	got, err := p.Generate(context.Background(), "sys", "user", Params{})
	if err != nil || got != "hello" {
		t.Errorf("Generate = (%q, %v), want (hello, nil)", got, err)
	}
}
