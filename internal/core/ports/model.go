package ports

import (
	"context"
	"errors"

	"github.com/melih/dockgen/internal/core/domain"
)

// ErrModelDisabled is returned by a RecipeModel that has no credential configured.
var ErrModelDisabled = errors.New("recipe model is not configured")

// RecipeModel produces raw recipe text from a generative model.
type RecipeModel interface {
	Generate(ctx context.Context, profile domain.StackProfile, manifest string, excerpts []domain.FileExcerpt) (string, error)
}
