package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/services"
	"github.com/example/gemmarket/internal/validation"
)

// ErrorHandler renders every error as {"error": message}. Unclassified
// errors become a generic 500 and are logged.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("request_id", c.Locals("requestid")),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}

func classify(err error) (int, string) {
	var fiberErr *fiber.Error
	var validationErr validation.Errors

	switch {
	case errors.As(err, &fiberErr):
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return fiberErr.Code, "internal server error"
		}
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized, "unauthorized"
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, services.ErrPhoneTaken):
		return fiber.StatusConflict, "Phone number is already registered"
	case errors.Is(err, services.ErrInvalidPhone):
		return fiber.StatusBadRequest, "Invalid phone number"
	case errors.Is(err, services.ErrUnsupportedCurrency):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrCategoryCycle):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrInvalidReference):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound, "not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.StatusConflict, "a record with the same unique value already exists"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}
