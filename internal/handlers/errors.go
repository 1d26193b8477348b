package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "Invalid request body")
}

// respondError maps service errors onto status codes. fallback is shown for
// upstream and unexpected failures, whose details stay in the logs.
func respondError(c *fiber.Ctx, err error, operation, fallback string) error {
	var validationErr *services.ValidationError
	var unavailableErr *services.UnavailableError
	var providerErr *services.ProviderError

	switch {
	case errors.As(err, &validationErr):
		return fail(c, fiber.StatusBadRequest, validationErr.Message)
	case errors.Is(err, services.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, "Unauthorized: invalid or expired token")
	case errors.Is(err, services.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.As(err, &providerErr):
		return fail(c, fiber.StatusBadRequest, providerErr.Message)
	case errors.Is(err, services.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Not found")
	case errors.As(err, &unavailableErr):
		slog.Warn("dependency not configured", "operation", operation, "error", err.Error())
		return fail(c, fiber.StatusServiceUnavailable, unavailableErr.Message)
	case errors.Is(err, services.ErrUpstream):
		logFailure(c, operation, err)
		return fail(c, fiber.StatusBadGateway, fallback)
	default:
		logFailure(c, operation, err)
		return fail(c, fiber.StatusInternalServerError, fallback)
	}
}

func logFailure(c *fiber.Ctx, operation string, err error) {
	attrs := []any{
		"operation", operation,
		"route", c.Method() + " " + c.Route().Path,
		"error", err.Error(),
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		attrs = append(attrs, "request_id", rid)
	}
	if userID, uerr := middleware.GetUserID(c); uerr == nil {
		attrs = append(attrs, "user_id", userID)
	}
	slog.Error("request failed", attrs...)
}

// ErrorHandler is the app-wide fallback for errors no handler converted.
// Only client errors (4xx) expose their message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return fail(c, code, message)
}
