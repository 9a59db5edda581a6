package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"auditapi/internal/service"
	"auditapi/internal/storage"
)

// errorPayload is the wire envelope for every failed request.
type errorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeError writes the standardized JSON error envelope.
// The message is a safe, human-readable string; stack traces and driver
// internals never reach the response body.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorPayload{Success: false, Error: message})
}

// statusForError maps the service error taxonomy onto HTTP status codes:
// validation failures to 400, missing audits/objects to 404, everything
// else (store or database failures) to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrDocumentIDRequired),
		errors.Is(err, service.ErrFilenameRequired),
		errors.Is(err, service.ErrFindingsRequired),
		errors.Is(err, service.ErrWCAGIDRequired),
		errors.Is(err, service.ErrKeyRequired),
		errors.Is(err, service.ErrInvalidExpiry):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrAuditNotFound),
		errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// writeServiceError converts a service failure into the error envelope,
// preserving the failure's message text.
func writeServiceError(c *fiber.Ctx, err error) error {
	return writeError(c, statusForError(err), err.Error())
}

// ErrorHandler returns the Fiber global error handler. It is the last line
// of defense for errors that escape a handler's own mapping; it emits the
// same envelope with a generic message and never echoes internals.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "method not allowed")
		default:
			return writeError(c, status, "internal server error")
		}
	}
}
