// Package git clones repositories and pushes generated recipes back using
// go-git, so no git binary is needed on the host.
package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/melih/dockgen/internal/config"
	"github.com/melih/dockgen/internal/core/ports"
)

var _ ports.RepositoryService = (*Adapter)(nil)

// Adapter implements ports.RepositoryService.
type Adapter struct {
	cfg config.Git
	now func() time.Time
}

func NewAdapter(cfg config.Git) *Adapter {
	return &Adapter{cfg: cfg, now: time.Now}
}

// auth returns nil for anonymous access. The token travels as the password of
// a basic-auth pair and is never written into the remote URL.
func (a *Adapter) auth(accessToken string) transport.AuthMethod {
	if accessToken == "" {
		return nil
	}
	return &githttp.BasicAuth{
		Username: a.cfg.Username,
		Password: accessToken,
	}
}

// Clone checks out the default branch of remoteURL into dir.
func (a *Adapter) Clone(ctx context.Context, remoteURL, accessToken, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          remoteURL,
		Auth:         a.auth(accessToken),
		Depth:        a.cfg.CloneDepth,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		return err
	}
	return nil
}

// CommitAndPush creates opts.Branch from HEAD, keeping the working tree, and
// pushes a commit containing opts.Files to the same branch name on origin.
func (a *Adapter) CommitAndPush(ctx context.Context, dir string, opts ports.CommitOptions) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	branch := plumbing.NewBranchReferenceName(opts.Branch)
	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: branch,
		Create: true,
		Keep:   true,
	}); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", opts.Branch, err)
	}

	for _, f := range opts.Files {
		if _, err := wt.Add(f); err != nil {
			return fmt.Errorf("failed to stage %s: %w", f, err)
		}
	}

	_, err = wt.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  a.cfg.AuthorName,
			Email: a.cfg.AuthorEmail,
			When:  a.now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		return fmt.Errorf("repository already contains this recipe")
	}
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("%s:%s", branch, branch))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: git.DefaultRemoteName,
		RemoteURL:  opts.RemoteURL,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       a.auth(opts.AccessToken),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push branch %s: %w", opts.Branch, err)
	}
	return nil
}
