package ports

import (
	"context"
	"errors"

	"github.com/melih/dockgen/internal/core/domain"
)

var ErrJobNotFound = errors.New("job not found")

// JobLedger persists job records.
type JobLedger interface {
	Save(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id string) (*domain.Job, error)
	// List returns up to limit jobs, newest first. A limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.Job, error)
	Close() error
}
