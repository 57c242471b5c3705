package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationErrorResponse lists every field that failed its validate tag.
type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequestValidationError carries per-field failures to the error handler.
type RequestValidationError struct {
	Fields []ValidationErrorResponse
}

func (e *RequestValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	out := &RequestValidationError{}
	for _, fe := range errs {
		out.Fields = append(out.Fields, ValidationErrorResponse{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "url":
		return "must be a valid url"
	case "alphanum", "uppercase":
		return "must be " + fe.Tag()
	}
	return fmt.Sprintf("failed on %s", fe.Tag())
}
