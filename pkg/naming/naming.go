// Package naming renders user-configured format strings into file and
// folder names and sanitizes the result for the filesystem.
package naming

import (
	"regexp"
	"strings"
)

// Default naming formats.
const (
	DefaultMovieFormat  = "{Title} ({Year}) {Source}-{Resolution}"
	DefaultFolderFormat = "{Title} ({Year})"
)

// tokenRegex matches {Name} and optional-bracket {[Name]} placeholders.
var tokenRegex = regexp.MustCompile(`\{(\[)?([A-Za-z][A-Za-z0-9 ]*)(\])?\}`)

var (
	emptyBrackets = regexp.MustCompile(`\[\s*\]|\(\s*\)`)
	multiSpace    = regexp.MustCompile(`\s{2,}`)
)

// Apply substitutes tokens into a format string. Token lookup is
// case-insensitive. An optional-bracket token {[Name]} renders as
// "[value]" when the value is non-empty and disappears entirely when it
// is empty. Unknown tokens are left untouched so a typo is visible in
// the output instead of silently vanishing.
func Apply(format string, tokens map[string]string) string {
	lookup := make(map[string]string, len(tokens))
	for k, v := range tokens {
		lookup[strings.ToLower(k)] = v
	}

	out := tokenRegex.ReplaceAllStringFunc(format, func(match string) string {
		parts := tokenRegex.FindStringSubmatch(match)
		optional := parts[1] == "[" && parts[3] == "]"
		value, known := lookup[strings.ToLower(parts[2])]
		if !known {
			return match
		}
		if optional {
			if value == "" {
				return ""
			}
			return "[" + value + "]"
		}
		return value
	})

	// Substitution can leave holes behind: empty bracket pairs from
	// literal brackets around now-empty tokens, doubled spaces, and
	// dangling separators.
	out = emptyBrackets.ReplaceAllString(out, "")
	out = multiSpace.ReplaceAllString(out, " ")
	out = strings.Trim(out, " .-")

	return out
}
