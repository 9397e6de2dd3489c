// Package build writes a recipe into a build context and runs the image build.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
	"github.com/melih/dockgen/internal/log"
)

// Orchestrator runs one image build per call.
type Orchestrator struct {
	tool ports.BuildTool
}

func NewOrchestrator(tool ports.BuildTool) *Orchestrator {
	return &Orchestrator{tool: tool}
}

// Build writes recipe to <contextDir>/Dockerfile, overwriting any existing
// file, and builds tag from it. It does not return an error: launch failures
// are reported as an unsuccessful outcome with a single log line.
func (o *Orchestrator) Build(ctx context.Context, contextDir, recipe, tag string) domain.BuildOutcome {
	logger := log.G(ctx).WithFields(logrus.Fields{"image": tag})

	recipePath := filepath.Join(contextDir, domain.RecipeFileName)
	if err := os.WriteFile(recipePath, []byte(recipe), 0o644); err != nil {
		logger.WithError(err).Error("failed to write recipe")
		return launchFailure(tag, fmt.Errorf("failed to write %s: %w", domain.RecipeFileName, err))
	}

	var collected collector
	logger.Info("building image")
	code, err := o.tool.Build(ctx, domain.BuildSpec{
		ContextDir: contextDir,
		RecipePath: recipePath,
		ImageTag:   tag,
	}, collected.add)
	if err != nil {
		logger.WithError(err).Error("failed to launch image build")
		return launchFailure(tag, err)
	}

	logs := collected.lines()
	if ctxErr := ctx.Err(); ctxErr != nil && code != 0 {
		logs = append(logs, fmt.Sprintf("Error: build aborted: %v", ctxErr))
	}

	logger.WithFields(logrus.Fields{"exit_code": code, "chunks": len(logs)}).Info("image build finished")
	return domain.BuildOutcome{
		Succeeded: code == 0,
		Logs:      logs,
		ImageTag:  tag,
	}
}

func launchFailure(tag string, err error) domain.BuildOutcome {
	return domain.BuildOutcome{
		Succeeded: false,
		Logs:      []string{fmt.Sprintf("Error: %v", err)},
		ImageTag:  tag,
	}
}

// collector gathers chunks from concurrently read streams.
type collector struct {
	mu     sync.Mutex
	chunks []string
}

func (c *collector) add(chunk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, chunk)
}

func (c *collector) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.chunks))
	copy(out, c.chunks)
	return out
}
