package serverutils

import (
	"errors"

	"study-tracker-be/internal/entity"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the response
// envelope with a matching status code.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, body := errorBody(err)
		return ctx.Status(code).JSON(body)
	}
}

func errorBody(err error) (int, interface{}) {
	var validationErr *RequestValidationError
	if errors.As(err, &validationErr) {
		return fiber.StatusBadRequest, &Response[[]ValidationErrorResponse]{
			Code:    fiber.StatusBadRequest,
			Message: "Validation failed",
			Data:    validationErr.Fields,
		}
	}

	var domainErr *entity.DomainError
	if errors.As(err, &domainErr) {
		code := StatusFor(domainErr.Kind)
		return code, &Response[fiber.Map]{
			Code:    code,
			Message: domainErr.Error(),
			Data:    fiber.Map{"entity": domainErr.Entity, "field": domainErr.Field, "kind": domainErr.Kind},
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, ErrorResponse(fiberErr.Code, fiberErr.Message)
	}

	return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, err.Error())
}

func StatusFor(kind entity.ErrorKind) int {
	switch kind {
	case entity.ErrorKindDuplicate, entity.ErrorKindConflict:
		return fiber.StatusConflict
	case entity.ErrorKindValidation:
		return fiber.StatusBadRequest
	case entity.ErrorKindNotFound:
		return fiber.StatusNotFound
	case entity.ErrorKindForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}
