package recipe

import (
	"regexp"
	"strings"

	"github.com/melih/dockgen/internal/core/domain"
)

const fence = "```"

var (
	// an opening fence, its optional language label and the whitespace after it
	fenceOpener = regexp.MustCompile("```[a-zA-Z-]*\\s*")
	labelLine   = regexp.MustCompile(`(?i)^\s*dockerfile:?\s*$`)
)

// Sanitize turns raw text into a clean Dockerfile: code fences and their
// labels are removed, lines that are only a "Dockerfile" label are dropped and
// the result ends with exactly one newline. Empty input yields empty output.
func Sanitize(text string) string {
	s := fenceOpener.ReplaceAllString(text, "")
	for strings.Contains(s, fence) {
		s = strings.ReplaceAll(s, fence, "")
	}

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, fence) || labelLine.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}

	s = strings.TrimSpace(strings.Join(kept, "\n"))
	if s == "" {
		return ""
	}
	return s + "\n"
}

// SanitizeCandidate sanitizes a candidate and keeps its provenance.
func SanitizeCandidate(c domain.RecipeCandidate) domain.RecipeCandidate {
	return c.WithContent(Sanitize(c.Content))
}

// lineCount counts the lines of sanitized text.
func lineCount(sanitized string) int {
	if sanitized == "" {
		return 0
	}
	return strings.Count(sanitized, "\n")
}
