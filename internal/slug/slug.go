// Package slug derives filesystem-safe project identifiers from
// human-readable names.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// invalid matches every run of characters that is neither a unicode
// letter nor a digit. CJK names pass through untouched.
var invalid = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Make lower-cases s and replaces invalid runs with single hyphens.
// Example: "Ad Copy! 2026" → "ad-copy-2026".
func Make(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = invalid.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")
	if out == "" {
		out = "project"
	}
	return out
}

// ID builds the immutable project id: slug plus creation timestamp in
// milliseconds. The id doubles as the basename of both backing files.
func ID(name string, t time.Time) string {
	return fmt.Sprintf("%s-%d", Make(name), t.UnixMilli())
}
