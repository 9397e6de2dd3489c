package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
)

var _ ports.JobLedger = (*MemoryLedger)(nil)

// MemoryLedger keeps jobs for the lifetime of the process.
type MemoryLedger struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{jobs: make(map[string]domain.Job)}
}

func (l *MemoryLedger) Save(_ context.Context, job *domain.Job) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs[job.ID] = clone(*job)
	return nil
}

func (l *MemoryLedger) Get(_ context.Context, id string) (*domain.Job, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	job, ok := l.jobs[id]
	if !ok {
		return nil, ports.ErrJobNotFound
	}
	job = clone(job)
	return &job, nil
}

func (l *MemoryLedger) List(_ context.Context, limit int) ([]domain.Job, error) {
	l.mu.RLock()
	jobs := make([]domain.Job, 0, len(l.jobs))
	for _, j := range l.jobs {
		jobs = append(jobs, clone(j))
	}
	l.mu.RUnlock()
	return newestFirst(jobs, limit), nil
}

func (l *MemoryLedger) Close() error { return nil }

// clone copies the slices and pointers a caller could mutate.
func clone(j domain.Job) domain.Job {
	j.Logs = append([]string{}, j.Logs...)
	if j.Detected != nil {
		d := *j.Detected
		j.Detected = &d
	}
	return j
}

// newestFirst sorts by creation time, ties broken by ID, and applies limit.
func newestFirst(jobs []domain.Job, limit int) []domain.Job {
	sort.SliceStable(jobs, func(i, k int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
		}
		return jobs[i].ID < jobs[k].ID
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs
}
