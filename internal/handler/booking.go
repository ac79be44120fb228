package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinegate/cinema-booking/internal/model"
	"github.com/cinegate/cinema-booking/internal/service"
)

// BookingHandler exposes the booking lifecycle: create from a hold, then
// confirm or cancel with the last observed version, plus lookups.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// createBookingRequest carries the hold being converted plus the booking
// form fields.
type createBookingRequest struct {
	Hold struct {
		Token       string    `json:"token"`
		ScreeningID uint64    `json:"screening_id"`
		SeatID      uint64    `json:"seat_id"`
		Version     uint32    `json:"version"`
		ExpiresAt   time.Time `json:"expires_at"`
	} `json:"hold"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

// versionRequest carries the optimistic version presented with a confirm or
// cancel call.
type versionRequest struct {
	Version uint32 `json:"version"`
}

// Create handles POST /v1/bookings. A valid, unexpired hold yields a 201
// with the PENDING booking; a hold that was swept or lost yields 409.
func (h *BookingHandler) Create(c echo.Context) error {
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	hold := model.Hold{
		Token:       body.Hold.Token,
		ScreeningID: body.Hold.ScreeningID,
		SeatID:      body.Hold.SeatID,
		Version:     body.Hold.Version,
		ExpiresAt:   body.Hold.ExpiresAt,
	}
	customer := model.Customer{
		Name:  body.CustomerName,
		Email: body.CustomerEmail,
		Phone: body.CustomerPhone,
	}
	booking, err := h.Bookings.Create(c.Request().Context(), hold, customer)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// Confirm handles POST /v1/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body versionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	booking, err := h.Bookings.Confirm(c.Request().Context(), id, body.Version)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Cancel handles DELETE /v1/bookings/:id. The version travels in the body
// for symmetry with confirm.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body versionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	booking, err := h.Bookings.Cancel(c.Request().Context(), id, body.Version)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Bookings.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ListByCustomer handles GET /v1/bookings/user/:email, most recent first.
func (h *BookingHandler) ListByCustomer(c echo.Context) error {
	email := strings.TrimSpace(c.Param("email"))
	bookings, err := h.Bookings.ListByCustomer(c.Request().Context(), email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}
