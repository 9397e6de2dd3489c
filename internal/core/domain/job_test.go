package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobTransitions(t *testing.T) {
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	done := created.Add(time.Minute)

	tests := []struct {
		name       string
		transition func(*Job) error
		want       JobStatus
		wantError  string
	}{
		{"succeed", func(j *Job) error { return j.Succeed(done) }, JobSuccess, ""},
		{"fail", func(j *Job) error { return j.Fail("clone failed", done) }, JobError, "clone failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewJob("job-1", "https://github.com/acme/shop", created)
			assert.Equal(t, JobPending, j.Status)
			assert.False(t, j.Terminal())
			assert.NotNil(t, j.Logs)

			require.NoError(t, tt.transition(j))
			assert.Equal(t, tt.want, j.Status)
			assert.Equal(t, tt.wantError, j.Error)
			assert.True(t, j.Terminal())
			assert.Equal(t, done, j.UpdatedAt)
			assert.Equal(t, created, j.CreatedAt)
		})
	}
}

func TestJobTransitionsOnlyOnce(t *testing.T) {
	now := time.Now()
	j := NewJob("job-1", "https://github.com/acme/shop", now)
	require.NoError(t, j.Fail("build failed", now))

	assert.ErrorIs(t, j.Succeed(now.Add(time.Second)), ErrJobTerminal)
	assert.ErrorIs(t, j.Fail("again", now.Add(time.Second)), ErrJobTerminal)
	assert.Equal(t, JobError, j.Status)
	assert.Equal(t, "build failed", j.Error)
	assert.Equal(t, now, j.UpdatedAt)
}
