package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/services"
	"github.com/example/gemmarket/internal/validation"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fiber.NewError(fiber.StatusTeapot, "short and stout"), fiber.StatusTeapot},
		{validation.Errors{"title is required"}, fiber.StatusBadRequest},
		{services.ErrForbidden, fiber.StatusForbidden},
		{services.ErrPhoneTaken, fiber.StatusConflict},
		{fmt.Errorf("category: %w", repository.ErrInvalidReference), fiber.StatusBadRequest},
		{fmt.Errorf("load: %w", gorm.ErrRecordNotFound), fiber.StatusNotFound},
		{gorm.ErrDuplicatedKey, fiber.StatusConflict},
		{repository.ErrCategoryCycle, fiber.StatusBadRequest},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if status, _ := classify(tc.err); status != tc.status {
			t.Errorf("classify(%v) = %d, want %d", tc.err, status, tc.status)
		}
	}
}

func TestClassifyHidesInternalDetail(t *testing.T) {
	if _, msg := classify(errors.New("pq: password authentication failed")); msg != "internal server error" {
		t.Errorf("expected generic message, got %q", msg)
	}
}
