package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
	"github.com/melih/dockgen/internal/core/recipe"
	"github.com/melih/dockgen/internal/log"
)

const DefaultCommitMessage = "chore(dockgen): add generated Dockerfile"

// PushRecipe commits the sanitized recipe on a new branch of the repository.
func (s *Service) PushRecipe(ctx context.Context, req domain.PushRequest) domain.PushResult {
	branch := strings.TrimSpace(req.BranchName)
	if branch == "" {
		branch = fmt.Sprintf("dockgen/dockerfile-%d", s.now().UnixMilli())
	}
	message := strings.TrimSpace(req.CommitMessage)
	if message == "" {
		message = DefaultCommitMessage
	}

	ctx = log.WithLogger(ctx, log.G(ctx).WithFields(logrus.Fields{
		"repo":   Redact(req.RepoURL),
		"branch": branch,
	}))

	if err := s.push(ctx, req, branch, message); err != nil {
		log.G(ctx).WithError(err).Error("failed to push recipe")
		return domain.PushResult{Success: false, Error: err.Error()}
	}

	log.G(ctx).Info("pushed recipe")
	return domain.PushResult{Success: true, Branch: branch}
}

func (s *Service) push(ctx context.Context, req domain.PushRequest, branch, message string) error {
	content := recipe.Sanitize(req.RecipeText)
	if content == "" {
		return fmt.Errorf("recipe is empty")
	}

	if err := os.MkdirAll(s.cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	dir := filepath.Join(s.cfg.WorkDir, s.newID())
	defer s.cleanup(ctx, dir)

	cloneCtx, cancel := withTimeout(ctx, s.cfg.Git.CloneTimeout)
	err := s.repos.Clone(cloneCtx, req.RepoURL, req.AccessToken, dir)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, domain.RecipeFileName), []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", domain.RecipeFileName, err)
	}

	// the push gets a fresh budget of the same length as the clone
	pushCtx, cancel := withTimeout(ctx, s.cfg.Git.CloneTimeout)
	defer cancel()
	return s.repos.CommitAndPush(pushCtx, dir, ports.CommitOptions{
		Branch:      branch,
		Message:     message,
		Files:       []string{domain.RecipeFileName},
		RemoteURL:   req.RepoURL,
		AccessToken: req.AccessToken,
	})
}
