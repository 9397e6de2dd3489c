// Package recipe produces, cleans and corrects Dockerfiles.
package recipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/melih/dockgen/internal/core/detector"
	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
	"github.com/melih/dockgen/internal/log"
)

const (
	maxExcerpts      = 3
	maxExcerptChars  = 4000
	maxManifestChars = 8000
	minRecipeLines   = 3
)

// configFiles are framework configuration files worth showing the model,
// in the order they are considered.
var configFiles = []string{
	"next.config.js",
	"next.config.mjs",
	"next.config.ts",
	"vite.config.ts",
	"vite.config.js",
	"angular.json",
	"nuxt.config.ts",
	"vue.config.js",
	"nest-cli.json",
}

// Generator asks a model for a recipe. A nil model disables the model path.
type Generator struct {
	model ports.RecipeModel
}

func NewGenerator(model ports.RecipeModel) *Generator {
	return &Generator{model: model}
}

// FromModel returns a sanitized model-generated candidate, or false when the
// model is disabled, fails or produces something too short to be a recipe.
// It never returns an error: the caller falls back to the templates.
func (g *Generator) FromModel(ctx context.Context, dir string, profile domain.StackProfile) (domain.RecipeCandidate, bool) {
	if g == nil || g.model == nil {
		return domain.RecipeCandidate{}, false
	}

	manifest := truncate(readFile(filepath.Join(dir, detector.ManifestFile)), maxManifestChars)
	text, err := g.model.Generate(ctx, profile, manifest, Excerpts(dir))
	if err != nil {
		if !errors.Is(err, ports.ErrModelDisabled) {
			log.G(ctx).WithError(err).Warn("model generation failed, falling back to template")
		}
		return domain.RecipeCandidate{}, false
	}

	cleaned := Sanitize(text)
	if n := lineCount(cleaned); n < minRecipeLines {
		log.G(ctx).WithFields(logrus.Fields{"lines": n}).Warn("model output too short, falling back to template")
		return domain.RecipeCandidate{}, false
	}

	return domain.RecipeCandidate{Content: cleaned, Provenance: domain.ProvenanceModel}, true
}

// Excerpts returns up to three known framework config files found in dir,
// each cut to a fixed size.
func Excerpts(dir string) []domain.FileExcerpt {
	var excerpts []domain.FileExcerpt
	for _, name := range configFiles {
		if len(excerpts) == maxExcerpts {
			break
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		excerpts = append(excerpts, domain.FileExcerpt{Path: name, Content: truncate(string(raw), maxExcerptChars)})
	}
	return excerpts
}

func readFile(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(raw)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
