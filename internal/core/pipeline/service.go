// Package pipeline drives one generation-and-build request from clone to
// persisted job record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/melih/dockgen/internal/config"
	"github.com/melih/dockgen/internal/core/build"
	"github.com/melih/dockgen/internal/core/detector"
	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
	"github.com/melih/dockgen/internal/core/recipe"
	"github.com/melih/dockgen/internal/log"
)

var _ ports.RecipeService = (*Service)(nil)

// Service implements ports.RecipeService.
type Service struct {
	cfg       config.Config
	repos     ports.RepositoryService
	tool      ports.BuildTool
	ledger    ports.JobLedger
	generator *recipe.Generator
	templates *recipe.Templates
	corrector *recipe.Corrector
	builder   *build.Orchestrator

	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithClock replaces time.Now, used for job timestamps, tags and branch names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the job and work directory identifier source.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService wires the pipeline. A nil model disables model generation.
func NewService(cfg config.Config, repos ports.RepositoryService, model ports.RecipeModel, tool ports.BuildTool, ledger ports.JobLedger, opts ...Option) *Service {
	templates := recipe.NewTemplates(cfg.Build.NodeVersion)
	s := &Service{
		cfg:       cfg,
		repos:     repos,
		tool:      tool,
		ledger:    ledger,
		generator: recipe.NewGenerator(model),
		templates: templates,
		corrector: recipe.NewCorrector(templates),
		builder:   build.NewOrchestrator(tool),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the caller-visible result plus the outcome of the ledger write.
type Result struct {
	domain.GenerateResult
	Ledger LedgerWrite
}

// LedgerWrite reports whether the job record was persisted. A failed write is
// logged and surfaced here only; it never changes the pipeline result.
type LedgerWrite struct {
	JobID string
	Err   error
}

func (w LedgerWrite) OK() bool { return w.Err == nil }

// stageError marks the step an unrecoverable failure happened in.
type stageError struct {
	stage domain.Stage
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

// Submit runs the pipeline off the caller's goroutine and delivers exactly
// one result on the returned channel.
func (s *Service) Submit(ctx context.Context, req domain.GenerateRequest) <-chan domain.GenerateResult {
	done := make(chan domain.GenerateResult, 1)
	go func() {
		done <- s.GenerateAndBuild(ctx, req).GenerateResult
	}()
	return done
}

// GenerateAndBuild clones the repository, produces a recipe, builds it and
// records the job. The work directory is removed on every path.
func (s *Service) GenerateAndBuild(ctx context.Context, req domain.GenerateRequest) (res Result) {
	job := domain.NewJob(s.newID(), Redact(req.RepoURL), s.now().UTC())
	ctx = log.WithLogger(ctx, log.G(ctx).WithFields(logrus.Fields{
		"job_id": job.ID,
		"repo":   job.RepoURL,
	}))

	dir := filepath.Join(s.cfg.WorkDir, job.ID)
	defer s.cleanup(ctx, dir)

	var failedAt domain.Stage
	defer func() {
		if r := recover(); r != nil {
			log.G(ctx).WithField("panic", r).Error("pipeline panicked")
			_ = job.Fail(fmt.Sprintf("internal error: %v", r), s.now().UTC())
			res = s.finish(ctx, job, failedAt)
		}
	}()

	log.G(ctx).Info("starting generation and build")
	succeeded, err := s.run(ctx, job, req, dir)
	switch {
	case err != nil:
		var se *stageError
		if errors.As(err, &se) {
			failedAt = se.stage
		}
		log.G(ctx).WithError(err).Error("pipeline failed")
		_ = job.Fail(err.Error(), s.now().UTC())
	case succeeded:
		_ = job.Succeed(s.now().UTC())
	default:
		failedAt = domain.StageBuild
		_ = job.Fail("image build failed", s.now().UTC())
	}

	return s.finish(ctx, job, failedAt)
}

func (s *Service) run(ctx context.Context, job *domain.Job, req domain.GenerateRequest, dir string) (bool, error) {
	if err := os.MkdirAll(s.cfg.WorkDir, 0o755); err != nil {
		return false, &stageError{domain.StageWorkspace, fmt.Errorf("failed to create work directory: %w", err)}
	}

	cloneCtx, cancel := withTimeout(ctx, s.cfg.Git.CloneTimeout)
	err := s.repos.Clone(cloneCtx, req.RepoURL, req.AccessToken, dir)
	cancel()
	if err != nil {
		return false, &stageError{domain.StageClone, fmt.Errorf("failed to clone repository: %w", err)}
	}

	profile := detector.Detect(dir)
	job.Detected = &profile
	log.G(ctx).WithFields(logrus.Fields{
		"type":            profile.PrimaryType,
		"package_manager": profile.PackageManager,
	}).Info("detected stack")

	candidate, ok := s.generator.FromModel(ctx, dir, profile)
	if !ok {
		candidate = s.templates.Render(profile)
	}
	if corrected := s.corrector.Correct(candidate, profile); corrected != candidate {
		log.G(ctx).Warn("generated recipe installs production dependencies before building, using template")
		candidate = corrected
	}
	candidate = recipe.SanitizeCandidate(candidate)

	job.RecipeText = candidate.Content
	job.Provenance = candidate.Provenance
	job.ImageTag = s.imageTag(req)

	buildCtx, cancel := withTimeout(ctx, s.cfg.Build.Timeout)
	defer cancel()
	outcome := s.builder.Build(buildCtx, dir, candidate.Content, job.ImageTag)
	job.Logs = outcome.Logs

	return outcome.Succeeded, nil
}

func (s *Service) finish(ctx context.Context, job *domain.Job, failedAt domain.Stage) Result {
	if !job.Terminal() {
		_ = job.Fail("pipeline ended without a result", s.now().UTC())
	}

	res := Result{
		GenerateResult: domain.GenerateResult{
			Success:    job.Status == domain.JobSuccess,
			Detected:   job.Detected,
			RecipeText: job.RecipeText,
			ImageTag:   job.ImageTag,
			Logs:       job.Logs,
			JobID:      job.ID,
			Error:      job.Error,
			FailedAt:   failedAt,
		},
		Ledger: s.record(ctx, job),
	}

	log.G(ctx).WithFields(logrus.Fields{"status": job.Status}).Info("job finished")
	return res
}

func (s *Service) record(ctx context.Context, job *domain.Job) LedgerWrite {
	w := LedgerWrite{JobID: job.ID}
	if s.ledger == nil {
		return w
	}
	if err := s.ledger.Save(ctx, job); err != nil {
		log.G(ctx).WithError(err).Warn("failed to record job")
		w.Err = err
	}
	return w
}

func (s *Service) cleanup(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.G(ctx).WithError(err).WithField("dir", dir).Warn("failed to remove work directory")
	}
}

func (s *Service) Job(ctx context.Context, id string) (*domain.Job, error) {
	if s.ledger == nil {
		return nil, ports.ErrJobNotFound
	}
	return s.ledger.Get(ctx, id)
}

func (s *Service) Jobs(ctx context.Context, limit int) ([]domain.Job, error) {
	if s.ledger == nil {
		return []domain.Job{}, nil
	}
	return s.ledger.List(ctx, limit)
}

// Health reports whether the image build tool is usable.
func (s *Service) Health(ctx context.Context) error {
	return s.tool.Check(ctx)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Redact strips credentials from a repository URL so it can be logged.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.User = nil
	return u.String()
}
