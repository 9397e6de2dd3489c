package docker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
)

var (
	_ ports.BuildTool = (*Adapter)(nil)
	_ io.Closer       = (*Adapter)(nil)
)

// Adapter implements ports.BuildTool against the Docker Engine API.
type Adapter struct {
	cli client.APIClient
}

// NewAdapter creates a new Docker adapter instance configured from the
// DOCKER_* environment.
func NewAdapter() (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// Build sends the context directory to the daemon and streams the build
// output into sink. The daemon reports failures inside the stream, which map
// to exit status 1.
func (a *Adapter) Build(ctx context.Context, spec domain.BuildSpec, sink ports.LogSink) (int, error) {
	recipe, err := filepath.Rel(spec.ContextDir, spec.RecipePath)
	if err != nil {
		return -1, fmt.Errorf("recipe is outside the build context: %w", err)
	}

	tar, err := archive.TarWithOptions(spec.ContextDir, &archive.TarOptions{})
	if err != nil {
		return -1, fmt.Errorf("failed to create build context: %w", err)
	}
	defer tar.Close()

	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:        []string{spec.ImageTag},
		Dockerfile:  filepath.ToSlash(recipe),
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return -1, fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	return decodeStream(resp.Body, sink), nil
}

// decodeStream forwards every message of a build response and returns the
// resulting exit status.
func decodeStream(r io.Reader, sink ports.LogSink) int {
	dec := json.NewDecoder(r)
	code := 0
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if !errors.Is(err, io.EOF) {
				sink(fmt.Sprintf("Error: failed to read build output: %v\n", err))
				code = 1
			}
			return code
		}

		switch {
		case msg.Error != nil:
			sink("Error: " + ensureNewline(msg.Error.Message))
			code = 1
		case msg.ErrorMessage != "":
			sink("Error: " + ensureNewline(msg.ErrorMessage))
			code = 1
		case msg.Stream != "":
			sink(msg.Stream)
		case msg.Status != "":
			sink(ensureNewline(msg.Status))
		}
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// Close releases the daemon connection.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

// Check pings the daemon.
func (a *Adapter) Check(ctx context.Context) error {
	if _, err := a.cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon is unreachable: %w", err)
	}
	return nil
}
