package handler

import (
	"errors"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/repository"
	"walldecor-admin/internal/service"
	"walldecor-admin/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps service errors to the JSON error body and status
func respondError(c *fiber.Ctx, err error) error {
	var ve *composer.ValidationError
	if errors.As(err, &ve) {
		body := fiber.Map{"error": ve.Message}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		return c.Status(400).JSON(body)
	}

	// remote client errors keep their status
	var apiErr *repository.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		return c.Status(apiErr.Status).JSON(fiber.Map{"error": apiErr.Message})
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden: requires CEO role"})
	case errors.Is(err, repository.ErrEmailTaken):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrBackend):
		logger.FromContext(c.UserContext()).Error("Backend unavailable", zap.Error(err))
		return c.Status(502).JSON(fiber.Map{"error": "Storage backend unavailable"})
	}

	logger.FromContext(c.UserContext()).Error("Unhandled error", zap.Error(err))
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
}

func created(c *fiber.Ctx, message string, data any) error {
	return c.Status(201).JSON(fiber.Map{"message": message, "data": data})
}
