package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fretnav/api/internal/model"
	"github.com/fretnav/api/internal/service"
	"github.com/fretnav/api/internal/theory"
	"github.com/fretnav/api/pkg/response"
)

type CheatsheetHandler struct {
	service   *service.CheatsheetService
	validator *validator.Validate
}

func NewCheatsheetHandler(svc *service.CheatsheetService, v *validator.Validate) *CheatsheetHandler {
	return &CheatsheetHandler{
		service:   svc,
		validator: v,
	}
}

// Start handles POST /api/cheatsheet/start
func (h *CheatsheetHandler) Start(c *fiber.Ctx) error {
	var req model.CheatsheetStartRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.StartCheatsheet(c.Context(), &req)
	if err != nil {
		if isTheoryError(err) {
			return theoryError(c, err)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/cheatsheet/status/:jobId
func (h *CheatsheetHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(c.Context(), jobID)
	if err != nil {
		return jobError(c, err)
	}

	return response.OK(c, result)
}

// Result handles GET /api/cheatsheet/result/:jobId
func (h *CheatsheetHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetResult(c.Context(), jobID)
	if err != nil {
		return jobError(c, err)
	}

	if wantsText(c) {
		pages := make([]string, 0, len(result.Pages))
		for _, p := range result.Pages {
			pages = append(pages, p.Text)
		}
		return response.Text(c, strings.Join(pages, "\n\n"))
	}
	return response.OK(c, result)
}

// Cancel handles POST /api/cheatsheet/cancel/:jobId
func (h *CheatsheetHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.CancelCheatsheet(c.Context(), jobID)
	if err != nil {
		return jobError(c, err)
	}

	return response.OK(c, result)
}

func jobError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, service.ErrJobNotCompleted):
		return response.JobFailed(c, "Job not completed yet")
	case errors.Is(err, service.ErrJobFinished):
		return response.JobFailed(c, "Job already finished")
	default:
		return response.ServiceError(c, err.Error())
	}
}

func isTheoryError(err error) bool {
	return errors.Is(err, theory.ErrUnknownPitch) ||
		errors.Is(err, theory.ErrUnknownKey) ||
		errors.Is(err, theory.ErrUnknownPattern) ||
		errors.Is(err, theory.ErrUnknownTuning)
}
