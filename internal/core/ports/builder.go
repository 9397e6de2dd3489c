package ports

import (
	"context"

	"github.com/melih/dockgen/internal/core/domain"
)

// LogSink receives build output chunks in the order each stream emits them.
// Implementations must be safe for concurrent use.
type LogSink func(chunk string)

// BuildTool runs an external image build.
// This interface allows us to switch between the docker CLI and the Engine API
// without changing the orchestration logic.
type BuildTool interface {
	// Build runs the build described by spec and returns the process exit status.
	// A non-nil error means the tool could not be launched at all.
	Build(ctx context.Context, spec domain.BuildSpec, sink LogSink) (int, error)

	// Check reports whether the tool is available.
	Check(ctx context.Context) error
}
