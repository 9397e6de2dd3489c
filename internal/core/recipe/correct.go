package recipe

import (
	"regexp"

	"github.com/melih/dockgen/internal/core/domain"
)

var (
	prodOnlyInstall  = regexp.MustCompile(`(?i)(npm\s+(ci|i|install)\b[^\n]*(--production|--omit[= ]dev|--only[= ]prod(uction)?)|pnpm\s+(i|install)\b[^\n]*--prod|yarn\s+install\b[^\n]*--production|bun\s+install\b[^\n]*--production)`)
	buildStep        = regexp.MustCompile(`(?i)\b((npm|pnpm|bun)\s+run\s+build|(pnpm|yarn)\s+build|yarn\s+run\s+build|(next|vite|ng|nest|react-scripts)\s+build)\b`)
	lineContinuation = regexp.MustCompile(`\\[ \t]*\r?\n`)
)

// devDependencyTypes need their development dependencies while the build step runs.
var devDependencyTypes = map[domain.PrimaryType]bool{
	domain.TypeNextJS:    true,
	domain.TypeReactVite: true,
	domain.TypeReact:     true,
	domain.TypeVue:       true,
	domain.TypeAngular:   true,
	domain.TypeNestJS:    true,
	domain.TypeNode:      false,
}

// Corrector replaces candidates that match known failure patterns with the
// deterministic template.
type Corrector struct {
	templates *Templates
}

func NewCorrector(templates *Templates) *Corrector {
	return &Corrector{templates: templates}
}

// Correct returns the template for profile when candidate installs
// production-only dependencies before building a stack that needs its
// development dependencies at build time. Otherwise candidate is returned.
func (c *Corrector) Correct(candidate domain.RecipeCandidate, profile domain.StackProfile) domain.RecipeCandidate {
	if !NeedsDevDependencies(profile.PrimaryType) {
		return candidate
	}
	if !prodInstallBeforeBuild(candidate.Content) {
		return candidate
	}
	return c.templates.Render(profile)
}

func NeedsDevDependencies(t domain.PrimaryType) bool {
	return devDependencyTypes[t]
}

// prodInstallBeforeBuild matches on logical lines: backslash continuations
// are joined first.
func prodInstallBeforeBuild(content string) bool {
	content = lineContinuation.ReplaceAllString(content, " ")
	for _, install := range prodOnlyInstall.FindAllStringIndex(content, -1) {
		if buildStep.MatchString(content[install[1]:]) {
			return true
		}
	}
	return false
}
