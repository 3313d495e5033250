package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"driftchat/internal/models"
)

// alienIDFromCtx returns the authenticated alien ID placed in locals by
// AuthRequired.
func alienIDFromCtx(c *fiber.Ctx) string {
	if id, ok := c.Locals("alienID").(string); ok {
		return id
	}
	return ""
}

// respondServiceError maps an application error to its HTTP status. Throttle
// rejections carry a Retry-After header so clients can back off precisely.
func respondServiceError(c *fiber.Ctx, err error) error {
	appErr, ok := err.(*models.AppError)
	if !ok {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case "VALIDATION_ERROR":
		status = fiber.StatusBadRequest
	case "UNAUTHORIZED":
		status = fiber.StatusUnauthorized
	case "NOT_MEMBER":
		status = fiber.StatusForbidden
	case "NOT_FOUND":
		status = fiber.StatusNotFound
	case "ROAM_GUARD", "COOLDOWN":
		status = fiber.StatusTooManyRequests
	}

	if appErr.RetryAfterSeconds > 0 {
		c.Set("Retry-After", strconv.Itoa(appErr.RetryAfterSeconds))
	}
	return models.RespondWithError(c, status, appErr)
}
