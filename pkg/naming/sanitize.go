package naming

import (
	"regexp"
	"strings"
)

// ColonMode selects how colons are rewritten during sanitization.
// Colons are the one illegal character users consistently want control
// over, because titles like "Alien: Covenant" read differently under
// each replacement.
type ColonMode int

const (
	// ColonDelete removes colons outright.
	ColonDelete ColonMode = iota
	// ColonDash replaces ":" with "-".
	ColonDash
	// ColonSpaceDash replaces ":" with " -".
	ColonSpaceDash
	// ColonSpaceDashSpace replaces ":" with " - ".
	ColonSpaceDashSpace
	// ColonSmart replaces ": " with " - " and any remaining ":" with "-".
	ColonSmart
)

// fileIllegal covers characters invalid in file names on common
// filesystems. Colons are handled separately by ColonMode.
var fileIllegal = regexp.MustCompile(`[<>"|?*\x00-\x1f]`)

// folderIllegal additionally forbids path separators inside a single
// folder component.
var folderIllegal = regexp.MustCompile(`[<>"|?*/\\\x00-\x1f]`)

var multiDot = regexp.MustCompile(`\.{2,}`)

// Sanitize rewrites name so it is legal as a file or folder name.
// Folder names use a stricter illegal set (no path separators) and drop
// trailing dots, which Windows cannot represent.
func Sanitize(name string, colon ColonMode, isFolder bool) string {
	switch colon {
	case ColonDash:
		name = strings.ReplaceAll(name, ":", "-")
	case ColonSpaceDash:
		name = strings.ReplaceAll(name, ":", " -")
	case ColonSpaceDashSpace:
		name = strings.ReplaceAll(name, ":", " - ")
	case ColonSmart:
		name = strings.ReplaceAll(name, ": ", " - ")
		name = strings.ReplaceAll(name, ":", "-")
	default:
		name = strings.ReplaceAll(name, ":", "")
	}

	if isFolder {
		name = folderIllegal.ReplaceAllString(name, " ")
	} else {
		name = strings.ReplaceAll(name, "/", " ")
		name = strings.ReplaceAll(name, "\\", " ")
		name = fileIllegal.ReplaceAllString(name, " ")
	}

	name = multiDot.ReplaceAllString(name, ".")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if isFolder {
		name = strings.TrimRight(name, ". ")
	}

	return name
}
