package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorHandler maps fiber, domain and validation errors onto the API
// error body. Unmapped errors become a 500 and are logged; their text is
// never sent to the client.
func NewErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := resolve(err)

		errorCode := "INTERNAL_ERROR"
		switch code {
		case fiber.StatusBadRequest:
			errorCode = "BAD_REQUEST"
		case fiber.StatusUnauthorized:
			errorCode = "UNAUTHORIZED"
		case fiber.StatusForbidden:
			errorCode = "FORBIDDEN"
		case fiber.StatusNotFound:
			errorCode = "NOT_FOUND"
		case fiber.StatusConflict:
			errorCode = "CONFLICT"
		case fiber.StatusRequestEntityTooLarge:
			errorCode = "PAYLOAD_TOO_LARGE"
		case fiber.StatusUnprocessableEntity:
			errorCode = "VALIDATION_ERROR"
		case fiber.StatusServiceUnavailable:
			errorCode = "SERVICE_UNAVAILABLE"
		}

		traceID := GetCorrelationID(c)
		if code >= fiber.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("trace_id", traceID).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("request failed")
		}

		return c.Status(code).JSON(ErrorResponse{
			Code:    errorCode,
			Message: message,
			TraceID: traceID,
		})
	}
}

func resolve(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusUnprocessableEntity, describeValidation(validationErrs)
	}

	switch {
	case errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrChangeRequestNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrChangeRequestProcessed):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotListingOwner):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidField),
		errors.Is(err, domain.ErrPhotoTypeInvalid):
		return fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrPhotoTooLarge):
		return fiber.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, domain.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable, err.Error()
	case errors.Is(err, domain.ErrListingWrite):
		return fiber.StatusInternalServerError, "Listing could not be saved"
	case errors.Is(err, domain.ErrAuditWrite):
		return fiber.StatusInternalServerError, "Audit log could not be written; the change was not applied"
	}

	return fiber.StatusInternalServerError, "Internal server error"
}

func describeValidation(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return "Validation failed: " + strings.Join(parts, ", ")
}

func NewError(code int, message string) *fiber.Error {
	return fiber.NewError(code, message)
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}

func Conflict(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusConflict, message)
}
