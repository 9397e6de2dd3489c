package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melih/dockgen/internal/config"
	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
)

type fakeService struct {
	result    domain.GenerateResult
	push      domain.PushResult
	jobs      []domain.Job
	healthErr error

	submitted *domain.GenerateRequest
	pushed    *domain.PushRequest
	limit     int
}

func (s *fakeService) Submit(_ context.Context, req domain.GenerateRequest) <-chan domain.GenerateResult {
	s.submitted = &req
	done := make(chan domain.GenerateResult, 1)
	done <- s.result
	return done
}

func (s *fakeService) PushRecipe(_ context.Context, req domain.PushRequest) domain.PushResult {
	s.pushed = &req
	return s.push
}

func (s *fakeService) Job(_ context.Context, id string) (*domain.Job, error) {
	for _, j := range s.jobs {
		if j.ID == id {
			return &j, nil
		}
	}
	return nil, ports.ErrJobNotFound
}

func (s *fakeService) Jobs(_ context.Context, limit int) ([]domain.Job, error) {
	s.limit = limit
	return s.jobs, nil
}

func (s *fakeService) Health(context.Context) error { return s.healthErr }

func newTestApp(t *testing.T, svc *fakeService) (*fiber.App, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	return NewApp(config.Default().HTTP, svc, logrus.NewEntry(logger)), hook
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

const validGenerate = `{"repoUrl":"https://github.com/acme/shop","accessToken":"ghp_secret"}`

func TestGenerateBuildSuccess(t *testing.T) {
	svc := &fakeService{result: domain.GenerateResult{
		Success:    true,
		Detected:   &domain.StackProfile{PrimaryType: domain.TypeNextJS, PackageManager: domain.NPM},
		RecipeText: "FROM node:20-alpine\n",
		ImageTag:   "shop:dockgen-1",
		Logs:       []string{"done\n"},
		JobID:      "job-1",
	}}
	app, _ := newTestApp(t, svc)

	code, body := do(t, app, "POST", "/api/generate-build", validGenerate)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "shop:dockgen-1", body["imageTag"])
	assert.Equal(t, "job-1", body["jobId"])
	assert.Equal(t, []any{"done\n"}, body["logLines"])
	assert.Equal(t, "nextjs", body["detected"].(map[string]any)["primaryType"])
	require.NotNil(t, svc.submitted)
	assert.Equal(t, "ghp_secret", svc.submitted.AccessToken)
}

func TestGenerateBuildFailedBuildIsOK(t *testing.T) {
	svc := &fakeService{result: domain.GenerateResult{
		Success:  false,
		Logs:     []string{"Error: exit 1\n"},
		JobID:    "job-1",
		Error:    "image build failed",
		FailedAt: domain.StageBuild,
	}}
	app, _ := newTestApp(t, svc)

	code, body := do(t, app, "POST", "/api/generate-build", validGenerate)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["logLines"])
}

func TestGenerateBuildPipelineFailure(t *testing.T) {
	svc := &fakeService{result: domain.GenerateResult{
		Success:  false,
		JobID:    "job-1",
		Error:    "failed to clone repository: authentication required",
		FailedAt: domain.StageClone,
	}}
	app, _ := newTestApp(t, svc)

	code, body := do(t, app, "POST", "/api/generate-build", validGenerate)

	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, map[string]any{
		"success": false,
		"error":   "failed to clone repository: authentication required",
		"jobId":   "job-1",
	}, body)
}

func TestGenerateBuildValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed", `{"repoUrl":`, ""},
		{"missing url", `{"accessToken":"x"}`, "repoUrl"},
		{"relative url", `{"repoUrl":"acme/shop","accessToken":"x"}`, "repoUrl"},
		{"ssh url", `{"repoUrl":"ssh://git@github.com/acme/shop","accessToken":"x"}`, "repoUrl"},
		{"missing token", `{"repoUrl":"https://github.com/acme/shop"}`, "accessToken"},
		{"bad image", `{"repoUrl":"https://github.com/acme/shop","accessToken":"x","imageName":"Shop:Latest!"}`, "imageName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			app, _ := newTestApp(t, svc)

			code, body := do(t, app, "POST", "/api/generate-build", tt.body)

			assert.Equal(t, fiber.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
			assert.Nil(t, svc.submitted, "pipeline must not run")
			if tt.field != "" {
				assert.Contains(t, body["fields"], tt.field)
			}
		})
	}
}

func TestPushDockerfile(t *testing.T) {
	svc := &fakeService{push: domain.PushResult{Success: true, Branch: "dockgen/dockerfile-1"}}
	app, _ := newTestApp(t, svc)

	code, body := do(t, app, "POST", "/api/push-dockerfile",
		`{"repoUrl":"https://github.com/acme/shop","accessToken":"x","recipeText":"FROM node:20-alpine\n"}`)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, map[string]any{"success": true, "branch": "dockgen/dockerfile-1"}, body)
	assert.Equal(t, "FROM node:20-alpine\n", svc.pushed.RecipeText)
}

func TestPushDockerfileFailure(t *testing.T) {
	svc := &fakeService{push: domain.PushResult{Success: false, Error: "failed to push branch: permission denied"}}
	app, _ := newTestApp(t, svc)

	code, body := do(t, app, "POST", "/api/push-dockerfile",
		`{"repoUrl":"https://github.com/acme/shop","accessToken":"x","recipeText":"FROM node:20-alpine\n"}`)

	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "permission denied")
}

func TestPushDockerfileValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"short recipe", `{"repoUrl":"https://github.com/acme/shop","accessToken":"x","recipeText":"FROM a"}`, "recipeText"},
		{"bad branch", `{"repoUrl":"https://github.com/acme/shop","accessToken":"x","recipeText":"FROM node:20-alpine","branchName":"bad..name"}`, "branchName"},
		{"missing token", `{"repoUrl":"https://github.com/acme/shop","recipeText":"FROM node:20-alpine"}`, "accessToken"},
		{"unknown host", `{"repoUrl":"https://example.com/acme/shop","accessToken":"x","recipeText":"FROM node:20-alpine"}`, "repoUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			app, _ := newTestApp(t, svc)

			code, body := do(t, app, "POST", "/api/push-dockerfile", tt.body)

			assert.Equal(t, fiber.StatusBadRequest, code)
			assert.Contains(t, body["fields"], tt.field)
			assert.Nil(t, svc.pushed)
		})
	}
}

func TestJobs(t *testing.T) {
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{jobs: []domain.Job{*domain.NewJob("job-1", "https://github.com/acme/shop", created)}}
	app, _ := newTestApp(t, svc)

	code, body := do(t, app, "GET", "/api/jobs?limit=500", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Len(t, body["jobs"], 1)
	assert.Equal(t, maxJobsLimit, svc.limit)

	code, body = do(t, app, "GET", "/api/jobs/job-1", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "pending", body["status"])

	code, _ = do(t, app, "GET", "/api/jobs/job-2", "")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = do(t, app, "GET", "/api/jobs?limit=abc", "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestHealth(t *testing.T) {
	app, hook := newTestApp(t, &fakeService{})
	code, body := do(t, app, "GET", "/health", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "dockgen-server", body["service"])

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request completed", entry.Message)
	assert.NotEmpty(t, entry.Data["request_id"])

	app, _ = newTestApp(t, &fakeService{healthErr: errors.New(`build tool "docker" is not available`)})
	code, body = do(t, app, "GET", "/health", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["ok"])
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t, &fakeService{})
	code, body := do(t, app, "GET", "/api/nope", "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.NotEmpty(t, body["error"])
}
