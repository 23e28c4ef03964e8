package header

import "testing"

func TestParse_HeaderAndBody(t *testing.T) {
	input := []byte("---\nname: Old\ntags:\n  - a\n  - b\n---\nHello")
	f, body := Parse(input)
	if f == nil {
		t.Fatal("expected header fields")
	}
	if f.Str("name") != "Old" {
		t.Errorf("name = %q", f.Str("name"))
	}
	tags := f.StrSlice("tags")
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("tags = %v", tags)
	}
	if body != "Hello" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_NoHeader(t *testing.T) {
	f, body := Parse([]byte("just text\nno fences"))
	if f != nil {
		t.Errorf("expected nil fields, got %v", f)
	}
	if body != "just text\nno fences" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_EmptyBlock(t *testing.T) {
	f, body := Parse([]byte("---\n---\nBody"))
	if f != nil {
		t.Errorf("empty block should yield nil fields, got %v", f)
	}
	if body != "Body" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_UnclosedFence(t *testing.T) {
	in := "---\nname: broken"
	f, body := Parse([]byte(in))
	if f != nil {
		t.Errorf("expected nil fields")
	}
	if body != in {
		t.Errorf("body should be input unchanged, got %q", body)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	in := "---\n: bad: yaml: {{{\n---\nBody"
	f, body := Parse([]byte(in))
	if f != nil {
		t.Errorf("invalid YAML should yield nil fields")
	}
	if body != in {
		t.Errorf("body should be input unchanged on invalid YAML")
	}
}

func TestFields_Accessors(t *testing.T) {
	f, _ := Parse([]byte("---\nname: X\nis_favorite: true\ntags: [a, 1]\n---\n"))
	if !f.Bool("is_favorite") {
		t.Error("is_favorite should be true")
	}
	if f.Str("missing") != "" {
		t.Error("missing string should be empty")
	}
	if f.Bool("name") {
		t.Error("non-bool should be false")
	}
	tags := f.StrSlice("tags")
	if len(tags) != 1 || tags[0] != "a" {
		t.Errorf("tags = %v, non-strings should be dropped", tags)
	}
}
