package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/core/ports"
	"github.com/melih/dockgen/internal/log"
)

const (
	defaultJobsLimit = 20
	maxJobsLimit     = 100
)

type RecipeHandler struct {
	service ports.RecipeService
	now     func() time.Time
}

func NewRecipeHandler(service ports.RecipeService) *RecipeHandler {
	return &RecipeHandler{service: service, now: time.Now}
}

func badRequest(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": err.Error()}
	var verr *ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}

// GenerateBuild runs the whole pipeline and answers once the build finished.
// A failed build is still a 200: the caller gets the logs and the recipe.
func (h *RecipeHandler) GenerateBuild(c *fiber.Ctx) error {
	var req domain.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := ValidateGenerate(req); err != nil {
		return badRequest(c, err)
	}

	res := <-h.service.Submit(c.UserContext(), req)
	if !res.Success && res.FailedAt != domain.StageBuild {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   res.Error,
			"jobId":   res.JobID,
		})
	}
	return c.JSON(res)
}

func (h *RecipeHandler) PushDockerfile(c *fiber.Ctx) error {
	var req domain.PushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := ValidatePush(req); err != nil {
		return badRequest(c, err)
	}

	res := h.service.PushRecipe(c.UserContext(), req)
	if !res.Success {
		return c.Status(fiber.StatusInternalServerError).JSON(res)
	}
	return c.JSON(res)
}

func (h *RecipeHandler) ListJobs(c *fiber.Ctx) error {
	limit := defaultJobsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = min(n, maxJobsLimit)
	}

	jobs, err := h.service.Jobs(c.UserContext(), limit)
	if err != nil {
		log.G(c.UserContext()).WithError(err).Error("failed to list jobs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

func (h *RecipeHandler) GetJob(c *fiber.Ctx) error {
	id := c.Params("id")
	job, err := h.service.Job(c.UserContext(), id)
	if errors.Is(err, ports.ErrJobNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job '" + id + "' not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(job)
}

// Health reports liveness and whether the build tool is usable.
func (h *RecipeHandler) Health(c *fiber.Ctx) error {
	body := fiber.Map{
		"ok":      true,
		"service": "dockgen-server",
		"time":    h.now().UTC().Format(time.RFC3339),
		"builder": "ok",
	}
	if err := h.service.Health(c.UserContext()); err != nil {
		body["ok"] = false
		body["builder"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}
