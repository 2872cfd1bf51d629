package middleware

import (
	"errors"
	"log"

	"workforce-grid/internal/geo"
	"workforce-grid/internal/graph"
	"workforce-grid/internal/pkg/response"
	"workforce-grid/internal/taxonomy"
	"workforce-grid/internal/trust"
	"workforce-grid/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

type ErrorMiddleware struct{}

func NewErrorMiddleware() *ErrorMiddleware {
	return &ErrorMiddleware{}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		return response.Error(c, status, msg, data)
	}
}

// normalizeError maps an error to its HTTP shape. Handlers mostly return
// usecase errors untouched and rely on the sentinel mapping here; AppError is
// for the few places that need a custom status or payload.
func normalizeError(err error) (int, string, interface{}) {
	if err == nil {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode <= 0 || appErr.StatusCode >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := appErr.Message
		if msg == "" {
			msg = defaultMessageForStatus(appErr.StatusCode)
		}
		return appErr.StatusCode, msg, appErr.Data
	}

	if status, ok := domainStatus(err); ok {
		if status >= 500 {
			return status, defaultMessageForStatus(status), nil
		}
		return status, err.Error(), nil
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := fiberErr.Message
		if msg == "" {
			msg = defaultMessageForStatus(status)
		}
		return status, msg, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}

func domainStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, graph.ErrNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, graph.ErrConstraint):
		return fiber.StatusConflict, true
	case errors.Is(err, graph.ErrStaleWrite):
		return fiber.StatusServiceUnavailable, true
	case errors.Is(err, taxonomy.ErrCycleDetected):
		return fiber.StatusUnprocessableEntity, true
	case errors.Is(err, trust.ErrInvalidEvent),
		errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, usecase.ErrInvalidInput):
		return fiber.StatusBadRequest, true
	}
	return 0, false
}

func defaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return response.MessageBadRequest
	case fiber.StatusNotFound:
		return response.MessageNotFound
	case fiber.StatusConflict:
		return response.MessageConflict
	case fiber.StatusUnprocessableEntity:
		return response.MessageUnprocessableEntity
	case fiber.StatusServiceUnavailable:
		return response.MessageServiceUnavailable
	default:
		if status >= 500 {
			return response.MessageInternalServerError
		}
		return response.MessageError
	}
}
