// Package header reads the embedded metadata block of legacy-format
// content files. A legacy file starts with a YAML block between ---
// fences; everything after the closing fence is the body.
package header

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Fields is the raw decoded header block.
type Fields map[string]any

// Parse splits raw legacy content into header fields and body. When no
// header block is present, when the block is empty, or when the YAML is
// malformed, it returns nil fields and the input unchanged as body.
func Parse(data []byte) (Fields, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing fence; the whole file is body.
		return nil, string(data)
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(after), "\n\r")

	var f Fields
	if err := yaml.Unmarshal(block, &f); err != nil {
		return nil, string(data)
	}
	if len(f) == 0 {
		return nil, body
	}
	return f, body
}

// Str returns the named field as a string, or empty when absent or of
// another type.
func (f Fields) Str(key string) string {
	if f == nil {
		return ""
	}
	s, _ := f[key].(string)
	return s
}

// Bool returns the named field as a bool.
func (f Fields) Bool(key string) bool {
	if f == nil {
		return false
	}
	b, _ := f[key].(bool)
	return b
}

// Time returns the named field as a timestamp. The YAML decoder yields
// time.Time for unquoted ISO-8601 scalars and string otherwise; both
// are accepted. Returns fallback when the field is absent or unparsable.
func (f Fields) Time(key string, fallback time.Time) time.Time {
	if f == nil {
		return fallback
	}
	switch v := f[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return fallback
}

// StrSlice returns the named field as a string slice (YAML list).
func (f Fields) StrSlice(key string) []string {
	if f == nil {
		return nil
	}
	raw, ok := f[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
