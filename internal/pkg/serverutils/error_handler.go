package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"documind-be/internal/repository/contract"
	"documind-be/internal/service"
	"documind-be/pkg/completion"
	"documind-be/pkg/extract"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by controllers into the
// standard response envelope. Controllers return domain errors as-is and
// this is the single place that knows their status codes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := mapError(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func mapError(err error) (int, string) {
	var validationErrs validator.ValidationErrors
	var completionErr *completion.Error
	var fiberErr *fiber.Error

	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, contract.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrEmptyDocument), errors.Is(err, extract.ErrUnsupportedType):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInsufficientContent):
		return fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, contract.ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.As(err, &validationErrs):
		return fiber.StatusBadRequest, formatValidationErrors(validationErrs)
	case errors.As(err, &completionErr):
		return fiber.StatusBadGateway, completionErr.Error()
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	}

	return fiber.StatusInternalServerError, err.Error()
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
	}
	return "validation failed: " + strings.Join(fields, ", ")
}
