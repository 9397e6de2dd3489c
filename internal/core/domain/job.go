package domain

import (
	"errors"
	"time"
)

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobSuccess JobStatus = "success"
	JobError   JobStatus = "error"
)

// ErrJobTerminal is returned when a finished job is asked to transition again.
var ErrJobTerminal = errors.New("job already reached a terminal state")

// Job records one generation-and-build request.
type Job struct {
	ID         string        `json:"id" yaml:"id"`
	RepoURL    string        `json:"repoUrl" yaml:"repoUrl"`
	ImageTag   string        `json:"imageTag,omitempty" yaml:"imageTag,omitempty"`
	RecipeText string        `json:"recipeText,omitempty" yaml:"recipeText,omitempty"`
	Provenance Provenance    `json:"provenance,omitempty" yaml:"provenance,omitempty"`
	Detected   *StackProfile `json:"detected,omitempty" yaml:"detected,omitempty"`
	Logs       []string      `json:"logLines" yaml:"logLines"`
	Status     JobStatus     `json:"status" yaml:"status"`
	Error      string        `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	CreatedAt  time.Time     `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt" yaml:"updatedAt"`
}

// NewJob creates a pending job.
func NewJob(id, repoURL string, now time.Time) *Job {
	return &Job{
		ID:        id,
		RepoURL:   repoURL,
		Logs:      []string{},
		Status:    JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (j *Job) Terminal() bool {
	return j.Status != JobPending
}

// Succeed moves a pending job to success.
func (j *Job) Succeed(now time.Time) error {
	if j.Terminal() {
		return ErrJobTerminal
	}
	j.Status = JobSuccess
	j.UpdatedAt = now
	return nil
}

// Fail moves a pending job to error and records the reason.
func (j *Job) Fail(message string, now time.Time) error {
	if j.Terminal() {
		return ErrJobTerminal
	}
	j.Status = JobError
	j.Error = message
	j.UpdatedAt = now
	return nil
}
