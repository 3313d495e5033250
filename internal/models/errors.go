package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   string `json:"details,omitempty"`
	Remaining int    `json:"remaining,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// RetryAfterSeconds is set on cooldown and roam-guard rejections so the
	// caller can self-schedule a retry. Zero otherwise.
	RetryAfterSeconds int
	Err               error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// NewRoamGuardError signals that the caller moved too far too fast and must
// wait before joining a distant room.
func NewRoamGuardError(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:              "ROAM_GUARD",
		Message:           "You moved too far too fast. Wait a few minutes before joining a distant room.",
		RetryAfterSeconds: retryAfterSeconds,
	}
}

// NewCooldownError signals that the caller posted too recently. remaining is
// the wait in whole seconds, rounded up.
func NewCooldownError(remaining int) *AppError {
	return &AppError{
		Code:              "COOLDOWN",
		Message:           fmt.Sprintf("Cooldown active. Wait %ds before posting again.", remaining),
		RetryAfterSeconds: remaining,
	}
}

// NewNotMemberError signals that the caller has no session in the target room.
func NewNotMemberError(message string) *AppError {
	return &AppError{
		Code:    "NOT_MEMBER",
		Message: message,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error:     appErr.Message,
			Code:      appErr.Code,
			Remaining: appErr.RetryAfterSeconds,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
