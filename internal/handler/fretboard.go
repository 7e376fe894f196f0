package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fretnav/api/internal/middleware"
	"github.com/fretnav/api/internal/model"
	"github.com/fretnav/api/internal/render"
	"github.com/fretnav/api/internal/service"
	"github.com/fretnav/api/pkg/response"
)

type FretboardHandler struct {
	service   *service.FretboardService
	share     *service.ShareService
	validator *validator.Validate
}

func NewFretboardHandler(svc *service.FretboardService, share *service.ShareService, v *validator.Validate) *FretboardHandler {
	return &FretboardHandler{
		service:   svc,
		share:     share,
		validator: v,
	}
}

// Build handles POST /api/fretboard
func (h *FretboardHandler) Build(c *fiber.Ctx) error {
	var req model.FretboardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return h.respond(c, &req)
}

// Share handles POST /api/share
func (h *FretboardHandler) Share(c *fiber.Ctx) error {
	var req model.FretboardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	// Only views that render get a link.
	if _, err := h.service.Render(&req); err != nil {
		return theoryError(c, err)
	}

	result, err := h.share.Create(&req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, result)
}

// Shared handles GET /api/share/:token
func (h *FretboardHandler) Shared(c *fiber.Ctx) error {
	view := middleware.GetView(c)
	if view == nil {
		return response.InvalidToken(c, "Missing share token")
	}
	return h.respond(c, view)
}

func (h *FretboardHandler) respond(c *fiber.Ctx, req *model.FretboardRequest) error {
	fb, err := h.service.Build(c.Context(), req)
	if err != nil {
		return theoryError(c, err)
	}

	if wantsText(c) {
		return response.Text(c, render.Fretboard(fb))
	}
	return response.OK(c, fb)
}
