package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/jobboard/internal/api/dto"
	"github.com/spec-kit/jobboard/internal/auth"
	"github.com/spec-kit/jobboard/internal/service"
	apperrors "github.com/spec-kit/jobboard/pkg/util"
)

// JobsHandler manages the caller's job postings.
type JobsHandler struct {
	service *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService) *JobsHandler {
	return &JobsHandler{service: jobService}
}

// ListJobs GET /api/jobs.
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("no token provided, authorization denied")
	}
	jobs, err := h.service.ListMine(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewJobListResponse(jobs))
}

// CreateJob POST /api/jobs.
func (h *JobsHandler) CreateJob(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("no token provided, authorization denied")
	}
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.service.Create(c.UserContext(), identity.ID, service.JobInput{
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewJobResponse(*job))
}

// UpdateJob PATCH /api/jobs/:id.
func (h *JobsHandler) UpdateJob(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("no token provided, authorization denied")
	}
	var req dto.UpdateJobRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	job, err := h.service.Update(c.UserContext(), c.Params("id"), identity.ID, req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewJobResponse(*job))
}

// DeleteJob DELETE /api/jobs/:id.
func (h *JobsHandler) DeleteJob(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("no token provided, authorization denied")
	}
	if err := h.service.Delete(c.UserContext(), c.Params("id"), identity.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Job deleted successfully"})
}
