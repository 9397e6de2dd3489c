package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/melih/dockgen/internal/config"
	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
)

// fakeRepos materializes files into the clone directory.
type fakeRepos struct {
	files    map[string]string
	cloneErr error
	pushErr  error

	cloneDelay time.Duration
	pushDelay  time.Duration
	pushCtxErr error

	token   string
	pushed  *ports.CommitOptions
	content string
}

func (r *fakeRepos) Clone(_ context.Context, _, accessToken, dir string) error {
	r.token = accessToken
	time.Sleep(r.cloneDelay)
	if r.cloneErr != nil {
		return r.cloneErr
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, body := range r.files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRepos) CommitAndPush(ctx context.Context, dir string, opts ports.CommitOptions) error {
	r.pushed = &opts
	time.Sleep(r.pushDelay)
	r.pushCtxErr = ctx.Err()
	raw, err := os.ReadFile(filepath.Join(dir, domain.RecipeFileName))
	if err != nil {
		return err
	}
	r.content = string(raw)
	return r.pushErr
}

type fakeTool struct {
	code   int
	calls  int
	chunks []string
	spec   domain.BuildSpec
}

func (f *fakeTool) Build(_ context.Context, spec domain.BuildSpec, sink ports.LogSink) (int, error) {
	f.calls++
	f.spec = spec
	for _, c := range f.chunks {
		sink(c)
	}
	return f.code, nil
}

func (f *fakeTool) Check(context.Context) error { return nil }

type fakeModel struct {
	text string
	err  error
}

func (m *fakeModel) Generate(context.Context, domain.StackProfile, string, []domain.FileExcerpt) (string, error) {
	return m.text, m.err
}

type fakeLedger struct {
	mu      sync.Mutex
	jobs    map[string]domain.Job
	saveErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{jobs: map[string]domain.Job{}}
}

func (l *fakeLedger) Save(_ context.Context, job *domain.Job) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.saveErr != nil {
		return l.saveErr
	}
	l.jobs[job.ID] = *job
	return nil
}

func (l *fakeLedger) Get(_ context.Context, id string) (*domain.Job, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	job, ok := l.jobs[id]
	if !ok {
		return nil, ports.ErrJobNotFound
	}
	return &job, nil
}

func (l *fakeLedger) List(context.Context, int) ([]domain.Job, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Job, 0, len(l.jobs))
	for _, j := range l.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (l *fakeLedger) Close() error { return nil }

var errUnreachable = errors.New("repository not found")

var fixedNow = time.UnixMilli(1700000000000).UTC()

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.WorkDir = filepath.Join(t.TempDir(), "work")
	return cfg
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("job-%d", n)
	}
}

// requireEmptyWorkDir asserts every per-request directory was reclaimed.
func requireEmptyWorkDir(t *testing.T, cfg config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.WorkDir)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	require.NoError(t, err)
	require.Empty(t, entries)
}
