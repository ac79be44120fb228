package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health returns a handler used by load balancers and monitoring systems to
// verify that the service is running. When a ping function is supplied the
// store is checked with a short timeout and a failure reports 503; with a
// nil ping the handler degrades to a plain liveness check.
func Health(ping func(context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded"})
			}
		}
		return c.String(http.StatusOK, "ok")
	}
}
