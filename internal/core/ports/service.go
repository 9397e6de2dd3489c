package ports

import (
	"context"

	"github.com/melih/dockgen/internal/core/domain"
)

// RecipeService is the use-case surface consumed by the transports.
type RecipeService interface {
	Submit(ctx context.Context, req domain.GenerateRequest) <-chan domain.GenerateResult
	PushRecipe(ctx context.Context, req domain.PushRequest) domain.PushResult
	Job(ctx context.Context, id string) (*domain.Job, error)
	Jobs(ctx context.Context, limit int) ([]domain.Job, error)
	Health(ctx context.Context) error
}
