package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// AcceptedHandler manages acceptance endpoints.
type AcceptedHandler struct {
	service *service.AcceptanceService
}

// NewAcceptedHandler constructs handler.
func NewAcceptedHandler(acceptanceService *service.AcceptanceService) *AcceptedHandler {
	return &AcceptedHandler{service: acceptanceService}
}

// Accept POST /accepted.
func (h *AcceptedHandler) Accept(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("please log in to accept a job")
	}
	var req dto.AcceptJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	record, err := h.service.Accept(c.UserContext(), principal, req.JobID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAcceptanceResponse(record)})
}

// List GET /accepted?email=.
func (h *AcceptedHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("please log in first")
	}
	records, err := h.service.ListForPrincipal(c.UserContext(), principal, c.Query("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAcceptanceList(records)})
}

// Remove DELETE /accepted/:id?reason=done|cancel.
func (h *AcceptedHandler) Remove(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("please log in first")
	}
	reason := domain.ParseCloseReason(c.Query("reason"))
	if err := h.service.Close(c.UserContext(), principal, c.Params("id"), reason); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
