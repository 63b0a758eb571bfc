package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// JobsHandler manages job posting endpoints.
type JobsHandler struct {
	service *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService) *JobsHandler {
	return &JobsHandler{service: jobService}
}

// ListJobs GET /jobs?sort=asc|desc&limit=N&email=poster.
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	filter := domain.JobFilter{
		Sort:        domain.ParseSortOrder(c.Query("sort")),
		PosterEmail: c.Query("email"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.NewValidationError("limit must be a number", map[string]any{"limit": raw})
		}
		filter.Limit = limit
	}

	jobs, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewJobList(jobs)})
}

// GetJob GET /jobs/:id.
func (h *JobsHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewJobResponse(job)})
}

// CreateJob POST /jobs.
func (h *JobsHandler) CreateJob(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("please log in to post a job")
	}
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.service.Create(c.UserContext(), principal, req.Draft())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewJobResponse(job)})
}

// UpdateJob PUT /jobs/:id.
func (h *JobsHandler) UpdateJob(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("please log in first")
	}
	var req dto.UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.service.Update(c.UserContext(), principal, c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewJobResponse(job)})
}

// DeleteJob DELETE /jobs/:id.
func (h *JobsHandler) DeleteJob(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("please log in first")
	}
	if err := h.service.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
