package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fretnav/api/internal/theory"
	"github.com/fretnav/api/pkg/response"
)

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}

// theoryError maps lookup failures from the theory package onto the API's
// error codes.
func theoryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, theory.ErrUnknownPitch):
		return response.UnknownPitch(c, err.Error())
	case errors.Is(err, theory.ErrUnknownKey):
		return response.UnknownKey(c, err.Error())
	case errors.Is(err, theory.ErrUnknownPattern), errors.Is(err, theory.ErrUnknownTuning):
		return response.NotFound(c, err.Error())
	default:
		return response.ServiceError(c, err.Error())
	}
}

// wantsText reports whether the client asked for a plain text diagram.
func wantsText(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextPlain) == fiber.MIMETextPlain
}
