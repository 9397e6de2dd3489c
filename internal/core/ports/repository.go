package ports

import "context"

// CommitOptions describes a commit pushed to a new branch.
type CommitOptions struct {
	Branch      string
	Message     string
	Files       []string // paths relative to the work tree
	RemoteURL   string
	AccessToken string
}

// RepositoryService clones repositories and pushes commits back.
type RepositoryService interface {
	// Clone performs a shallow checkout of remoteURL into dir.
	Clone(ctx context.Context, remoteURL, accessToken, dir string) error

	// CommitAndPush commits opts.Files in dir on opts.Branch and pushes it.
	CommitAndPush(ctx context.Context, dir string, opts CommitOptions) error
}
