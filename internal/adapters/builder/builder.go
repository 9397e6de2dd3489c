// Package builder runs image builds through an external build CLI.
package builder

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/cli/safeexec"
	"github.com/mattn/go-shellwords"

	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
	"github.com/melih/dockgen/internal/log"
)

var _ ports.BuildTool = (*Adapter)(nil)

// waitDelay bounds how long Wait keeps copying output after the process
// group was killed.
const waitDelay = 5 * time.Second

// Adapter implements ports.BuildTool by invoking `<binary> build`.
type Adapter struct {
	binary    string
	extraArgs []string
}

// NewBuilderAdapter parses extraArgs with shell quoting rules. The binary is
// resolved lazily so a missing tool surfaces as a failed build, not a failed
// start-up.
func NewBuilderAdapter(binary, extraArgs string) (*Adapter, error) {
	args, err := shellwords.Parse(extraArgs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse build arguments: %w", err)
	}
	return &Adapter{binary: binary, extraArgs: args}, nil
}

// Args returns the command line for spec, without the binary.
func (a *Adapter) Args(spec domain.BuildSpec) []string {
	args := []string{"build", "-t", spec.ImageTag, "-f", spec.RecipePath}
	args = append(args, a.extraArgs...)
	return append(args, spec.ContextDir)
}

// Build runs the CLI and forwards stdout and stderr to sink line by line as
// they arrive. Cancelling ctx kills the whole process group, so helper
// processes spawned by the CLI cannot keep the build alive.
func (a *Adapter) Build(ctx context.Context, spec domain.BuildSpec, sink ports.LogSink) (int, error) {
	path, err := safeexec.LookPath(a.binary)
	if err != nil {
		return -1, fmt.Errorf("failed to find build tool %q: %w", a.binary, err)
	}

	stdout, stderr := newLineWriter(sink), newLineWriter(sink)
	cmd := exec.CommandContext(ctx, path, a.Args(spec)...)
	cmd.Dir = spec.ContextDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	log.G(ctx).WithField("args", cmd.Args).Debug("running build tool")
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("failed to start build tool: %w", err)
	}

	err = cmd.Wait()
	stdout.Flush()
	stderr.Flush()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		if code := exitErr.ExitCode(); code > 0 {
			return code, nil
		}
		// killed by a signal, usually the context deadline
		return 1, nil
	case errors.Is(err, exec.ErrWaitDelay):
		// the tool exited but a leftover process held its output open
		if code := cmd.ProcessState.ExitCode(); code != 0 {
			return 1, nil
		}
		if ctx.Err() != nil {
			return 1, nil
		}
		return 0, nil
	default:
		return -1, fmt.Errorf("failed to wait for build tool: %w", err)
	}
}

// Check reports whether the binary is on PATH.
func (a *Adapter) Check(context.Context) error {
	if _, err := safeexec.LookPath(a.binary); err != nil {
		return fmt.Errorf("build tool %q is not available: %w", a.binary, err)
	}
	return nil
}
