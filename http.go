package board

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// HTTPStatus maps an error to a response status code
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	var rich *errors.Error
	if !errors.As(err, &rich) {
		return http.StatusInternalServerError
	}

	if rich.Code >= 400 && rich.Code < 600 {
		return rich.Code
	}

	switch rich.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse builds the JSON body for an error. Internal failures never
// expose their message.
func ErrorResponse(err error) fiber.Map {
	status := HTTPStatus(err)
	body := fiber.Map{
		"statusCode": status,
		"error":      http.StatusText(status),
		"message":    http.StatusText(status),
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		body["message"] = fiberErr.Message
		return body
	}

	var rich *errors.Error
	if errors.As(err, &rich) && status < http.StatusInternalServerError {
		body["message"] = rich.Message
		if rich.TextCode != "" {
			body["code"] = rich.TextCode
		}
		if fields, ok := rich.Metadata["fields"]; ok && status == http.StatusBadRequest {
			body["fields"] = fields
		}
	} else if errors.As(err, &rich) && rich.TextCode == TextCodeStoreUnavailable {
		body["message"] = ErrStoreUnavailable.Message
		body["code"] = rich.TextCode
	}

	return body
}

// NewErrorHandler returns the fiber ErrorHandler used by the application.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)
	return func(c *fiber.Ctx, err error) error {
		status := HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			var rich *errors.Error
			if errors.As(err, &rich) && len(rich.Metadata) > 0 {
				logger.Error("request failed", "path", c.Path(), "status", status, "error", err,
					"metadata", print.MaybePrettyJSON(rich.Metadata))
			} else {
				logger.Error("request failed", "path", c.Path(), "status", status, "error", err)
			}
		} else {
			logger.Debug("request rejected", "path", c.Path(), "status", status, "error", err)
		}
		return c.Status(status).JSON(ErrorResponse(err))
	}
}

// HealthHandler reports liveness
func HealthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
