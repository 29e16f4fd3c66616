package cleaning

import (
	"regexp"
)

// DefaultCodePrefix is the business code prefix used by the shop sources.
const DefaultCodePrefix = "MOBIS"

// CodeResolver extracts a fixed-prefix shop code (prefix followed by digits)
// from free text. The SMS export embeds the code in a "SHOP NAME - MOBIS123"
// field with no reliable surrounding structure.
type CodeResolver struct {
	prefix  string
	pattern *regexp.Regexp
}

// NewCodeResolver builds a resolver for the given prefix. An empty prefix
// falls back to DefaultCodePrefix. The prefix matches case-sensitively in
// its canonical uppercase form; the resolver never normalizes its input.
func NewCodeResolver(prefix string) *CodeResolver {
	if prefix == "" {
		prefix = DefaultCodePrefix
	}
	return &CodeResolver{
		prefix:  prefix,
		pattern: regexp.MustCompile(regexp.QuoteMeta(prefix) + `\d+`),
	}
}

// Extract returns the first embedded code in s, or ok=false when none is
// present. Absence is a normal outcome, not an error: empty input, text
// without a code, and lowercase variants all report ok=false.
func (r *CodeResolver) Extract(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	code := r.pattern.FindString(s)
	if code == "" {
		return "", false
	}
	return code, true
}
