// Package handler contains the Echo HTTP handlers. Handlers are thin
// adapters: they parse the request, call a service and translate the
// ConflictError taxonomy into HTTP statuses. Conflicts caused by another
// actor's concurrent success (seat taken, stale version, finalized booking)
// map to 409 so callers can render "someone else just took this seat"
// distinctly from validation failures (400) and unknown entities (404).
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinegate/cinema-booking/internal/repository"
)

// respondError writes the JSON error shape for err. Unknown errors are
// reported as a generic 500; the detail is not leaked to clients.
func respondError(c echo.Context, err error) error {
	if ce, ok := repository.AsConflict(err); ok {
		status := http.StatusInternalServerError
		switch ce.Reason {
		case repository.SeatUnavailable, repository.VersionMismatch, repository.AlreadyFinalized:
			status = http.StatusConflict
		case repository.NotFound:
			status = http.StatusNotFound
		case repository.ValidationFailed:
			status = http.StatusBadRequest
		}
		return c.JSON(status, echo.Map{
			"error":   string(ce.Reason),
			"message": ce.Message,
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "INTERNAL", "message": "database error"})
}
