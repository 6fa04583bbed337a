package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/policy"
	"github.com/sakashimaa/webshop/internal/repository"
	"github.com/sakashimaa/webshop/internal/service"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"github.com/sakashimaa/webshop/pkg/utils"
	"go.uber.org/zap"
)

const accessDenied = "403 Access Denied!"

// writeError maps a service error onto the HTTP response. Unknown errors are
// logged and hidden behind a 500.
func writeError(ctx context.Context, c *fiber.Ctx, logger *zap.Logger, err error) error {
	var validationErrors validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrors):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": utils.FormatValidationError(err)})

	case errors.Is(err, domain.ErrEmptyBasket):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": fiber.Map{"__all__": domain.ErrEmptyBasket.Error()},
		})

	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundMessage(err)})

	case errors.Is(err, policy.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": policy.ErrUnauthenticated.Error()})

	case errors.Is(err, policy.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": accessDenied})

	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": service.ErrInvalidCredentials.Error()})

	case errors.Is(err, repository.ErrUserAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": repository.ErrUserAlreadyExists.Error()})

	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": domain.ErrInvalidTransition.Error()})
	}

	mylogger.Error(
		ctx,
		logger,
		"Request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func notFoundMessage(err error) string {
	for _, target := range []error{repository.ErrProductNotFound, repository.ErrOrderNotFound, repository.ErrUserNotFound} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "not found"
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": fiber.Map{"__all__": "invalid request body"},
	})
}

// bind parses and validates the request body into out. When it reports false
// the error response has already been written.
func bind(c *fiber.Ctx, validate *validator.Validate, logger *zap.Logger, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		mylogger.Warn(c.UserContext(), logger, "Invalid request body", zap.String("path", c.Path()), zap.Error(err))
		return false, badBody(c)
	}

	if err := validate.Struct(out); err != nil {
		return false, writeError(c.UserContext(), c, logger, err)
	}

	return true, nil
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
}

// idParam parses a positive :id route parameter.
func idParam(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}
