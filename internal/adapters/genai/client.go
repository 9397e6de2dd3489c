// Package genai asks a Gemini model for a Dockerfile.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/gofiber/fiber/v2"

	"github.com/melih/dockgen/internal/config"
	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
)

const apiKeyHeader = "x-goog-api-key"

var _ ports.RecipeModel = (*Client)(nil)

// Client implements ports.RecipeModel over the generateContent REST call.
type Client struct {
	cfg         config.Model
	nodeVersion string
}

func NewClient(cfg config.Model, nodeVersion string) *Client {
	return &Client{cfg: cfg, nodeVersion: nodeVersion}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) url() string {
	return fmt.Sprintf("%s/%s/models/%s:generateContent",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Version, c.cfg.Name)
}

// Generate returns the raw model text. It returns ports.ErrModelDisabled
// without any network call when no API key is configured.
func (c *Client) Generate(ctx context.Context, profile domain.StackProfile, manifest string, excerpts []domain.FileExcerpt) (string, error) {
	if !c.cfg.Enabled() {
		return "", ports.ErrModelDisabled
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prompt, err := Prompt(profile, manifest, excerpts, c.nodeVersion)
	if err != nil {
		return "", err
	}

	agent := fiber.Post(c.url())
	agent.Set(apiKeyHeader, c.cfg.APIKey)
	agent.Timeout(c.timeout(ctx))
	agent.JSON(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	})

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("failed to call model: %w", errs[0])
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode model response (status %d): %w", code, err)
	}
	if code != fiber.StatusOK {
		if resp.Error != nil {
			return "", fmt.Errorf("model returned %d: %s", code, resp.Error.Message)
		}
		return "", fmt.Errorf("model returned %d", code)
	}

	return resp.text(), nil
}

// timeout is the configured timeout, shortened to the context deadline.
func (c *Client) timeout(ctx context.Context) time.Duration {
	d := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); d <= 0 || left < d {
			d = left
		}
	}
	return d
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

var promptHeader = heredoc.Doc(`
	You are DockGen, an expert in crafting minimal, production-ready Dockerfiles for JavaScript web apps.
	Detected stack: %s
	package.json (truncated):
	<pkg>
	%s
	</pkg>
	Important files (may be truncated):
	<files>
	%s
	</files>

	Rules:
	- Prefer multi-stage builds.
	- Use Node %s for building.
	- For Next.js, run build then use next start on port 3000; copy .next and public.
	- For Vite/CRA/Vue/Angular, produce static build and serve with nginx on port 80.
	- For NestJS, build with dev dependencies then run node dist/main.js.
	- For Node/Express backends, install deps with production only and run start.
	- Never install production-only dependencies before the build step.
	- Respect package manager if detectable (npm/yarn/pnpm/bun). Use frozen lockfile/ci when possible.
	- Output ONLY the Dockerfile contents, no explanations.
`)

// Prompt renders the instruction sent to the model.
func Prompt(profile domain.StackProfile, manifest string, excerpts []domain.FileExcerpt, nodeVersion string) (string, error) {
	profile.Manifest = nil
	detected, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode stack profile: %w", err)
	}

	files := make([]string, 0, len(excerpts))
	for _, e := range excerpts {
		files = append(files, fmt.Sprintf("FILE: %s\n%s", e.Path, e.Content))
	}

	return fmt.Sprintf(promptHeader, detected, manifest, strings.Join(files, "\n\n"), nodeVersion), nil
}
