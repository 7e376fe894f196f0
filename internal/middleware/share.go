package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fretnav/api/internal/model"
	"github.com/fretnav/api/internal/service"
	"github.com/fretnav/api/pkg/response"
)

type ShareMiddleware struct {
	shareService *service.ShareService
}

func NewShareMiddleware(shareService *service.ShareService) *ShareMiddleware {
	return &ShareMiddleware{shareService: shareService}
}

// Resolve verifies the :token route param and stores the shared view
func (m *ShareMiddleware) Resolve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Params("token")
		if tokenString == "" {
			return response.InvalidToken(c, "Missing share token")
		}

		view, err := m.shareService.Resolve(tokenString)
		if err != nil {
			return response.InvalidToken(c, "Invalid or expired share token")
		}

		c.Locals("view", view)
		return c.Next()
	}
}

// GetView extracts the shared view from context
func GetView(c *fiber.Ctx) *model.FretboardRequest {
	if view, ok := c.Locals("view").(*model.FretboardRequest); ok {
		return view
	}
	return nil
}
