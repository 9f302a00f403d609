package search

import (
	"fmt"
	"regexp"
	"strings"
)

// FormatSpec is one pattern inside a custom format rule.
type FormatSpec struct {
	Pattern      string
	Required     bool
	Negate       bool
	IsResolution bool
}

// CustomFormat is a user-defined scoring rule. The rule contributes its
// score when at least one non-negated required spec matches the title
// and no negated required spec does.
type CustomFormat struct {
	Name  string
	Score int
	Specs []FormatSpec
}

var resolutionDigits = regexp.MustCompile(`\d{3,4}`)

// specMatches evaluates a single spec against a title. Resolution specs
// match on a word-bounded numeric pattern so "1080" also hits "1080p";
// everything else uses the stored pattern as a case-insensitive regex,
// degrading to a substring check if the pattern does not compile.
func specMatches(title string, spec FormatSpec) bool {
	if spec.IsResolution {
		digits := resolutionDigits.FindString(spec.Pattern)
		if digits == "" {
			return false
		}
		re, err := regexp.Compile(`\b` + digits + `p?\b`)
		if err != nil {
			return false
		}
		return re.MatchString(title)
	}

	re, err := regexp.Compile(`(?i)` + spec.Pattern)
	if err != nil {
		return strings.Contains(strings.ToLower(title), strings.ToLower(spec.Pattern))
	}
	return re.MatchString(title)
}

// formatMatches reports whether a rule applies to the title. Only
// required specs are evaluated; optional specs are ignored. The first
// matching negated spec disqualifies the rule outright.
func formatMatches(title string, cf CustomFormat) bool {
	evaluated := false
	positive := false

	for _, spec := range cf.Specs {
		if !spec.Required {
			continue
		}
		evaluated = true
		matched := specMatches(title, spec)
		if spec.Negate {
			if matched {
				return false
			}
			continue
		}
		if matched {
			positive = true
		}
	}

	return evaluated && positive
}

// ScoreFormats evaluates every rule against the title and returns the
// summed score plus a human-readable breakdown in rule order. The
// breakdown is "-" when no rule matched. Identical inputs always yield
// identical output.
func ScoreFormats(title string, formats []CustomFormat) (int, string) {
	total := 0
	var parts []string

	for _, cf := range formats {
		if !formatMatches(title, cf) {
			continue
		}
		total += cf.Score
		parts = append(parts, fmt.Sprintf("%s %+d", cf.Name, cf.Score))
	}

	if len(parts) == 0 {
		return 0, "-"
	}
	return total, strings.Join(parts, ", ")
}
