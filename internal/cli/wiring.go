package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/melih/dockgen/internal/adapters/builder"
	"github.com/melih/dockgen/internal/adapters/docker"
	"github.com/melih/dockgen/internal/adapters/genai"
	"github.com/melih/dockgen/internal/adapters/git"
	"github.com/melih/dockgen/internal/adapters/storage"
	"github.com/melih/dockgen/internal/config"
	"github.com/melih/dockgen/internal/core/pipeline"
	"github.com/melih/dockgen/internal/core/ports"
)

// components are the adapters a command needs, built from one Config.
type components struct {
	service *pipeline.Service
	tool    ports.BuildTool
	ledger  ports.JobLedger
}

func (c *components) Close() error {
	var err error
	if c.ledger != nil {
		err = c.ledger.Close()
	}
	return errors.Join(err, closeTool(c.tool))
}

// closeTool releases tools that hold a connection, such as the engine client.
func closeTool(tool ports.BuildTool) error {
	if c, ok := tool.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// buildTools is swapped out in tests.
var buildTools = newBuildTool

func newBuildTool(cfg config.Build) (ports.BuildTool, error) {
	switch cfg.Driver {
	case config.BuildDriverEngine:
		return docker.NewAdapter()
	case config.BuildDriverCLI:
		return builder.NewBuilderAdapter(cfg.Binary, cfg.ExtraArgs)
	default:
		return nil, fmt.Errorf("unknown build driver %q", cfg.Driver)
	}
}

func newLedger(cfg config.Ledger) (ports.JobLedger, error) {
	if cfg.Path == "" {
		return storage.NewMemoryLedger(), nil
	}
	return storage.OpenBadger(cfg.Path)
}

// newModel returns nil when no API key is configured so the pipeline goes
// straight to the templates.
func newModel(cfg config.Config) ports.RecipeModel {
	if !cfg.Model.Enabled() {
		return nil
	}
	return genai.NewClient(cfg.Model, cfg.Build.NodeVersion)
}

func newComponents(cfg config.Config) (*components, error) {
	tool, err := buildTools(cfg.Build)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize build tool: %w", err)
	}

	ledger, err := newLedger(cfg.Ledger)
	if err != nil {
		return nil, errors.Join(err, closeTool(tool))
	}

	svc := pipeline.NewService(cfg, git.NewAdapter(cfg.Git), newModel(cfg), tool, ledger)
	return &components{service: svc, tool: tool, ledger: ledger}, nil
}

// closeAll folds a Close error into err.
func closeAll(c *components, err error) error {
	return errors.Join(err, c.Close())
}
