package server

import (
	"errors"
	"strings"

	"bridgefeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+strings.ToUpper(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into out. On failure it writes a 400 and
// returns errResponseWritten.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, &models.AppError{
			Code:    models.CodeValidation,
			Message: "Invalid request body",
			Err:     err,
		})
		return errResponseWritten
	}
	return nil
}

// respondError answers with the status matching the error code.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// featureRequired rejects requests with 403 while the flag is off.
func (s *Server) featureRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(flag) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Feature "+flag+" is disabled"))
		}
		return c.Next()
	}
}
