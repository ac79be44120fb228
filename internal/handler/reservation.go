package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinegate/cinema-booking/internal/model"
	"github.com/cinegate/cinema-booking/internal/service"
)

// ReservationHandler exposes hold acquisition and release. Reserve is the
// race window of the whole system: two customers clicking the same seat get
// exactly one 201 and one 409.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	if reservations == nil {
		panic("nil reservation service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations}
}

// holdPayload is the wire form of a hold, returned by Reserve and accepted
// back by Release.
type holdPayload struct {
	Token       string    `json:"token"`
	ScreeningID uint64    `json:"screening_id"`
	SeatID      uint64    `json:"seat_id"`
	Version     uint32    `json:"version"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Reserve handles POST /v1/screenings/:id/seats/:seatID/reserve. On success
// it returns 201 with the hold; the client must either convert it into a
// booking or release it, and the expiry sweep covers clients that do
// neither.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	screeningID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	seatID, ok := pathID(c, "seatID")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	hold, err := h.Reservations.Reserve(c.Request().Context(), screeningID, seatID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, holdPayload{
		Token:       hold.Token,
		ScreeningID: hold.ScreeningID,
		SeatID:      hold.SeatID,
		Version:     hold.Version,
		ExpiresAt:   hold.ExpiresAt,
	})
}

// Release handles POST /v1/screenings/:id/seats/:seatID/release with the
// hold in the body. Releasing an already-gone hold is a success, so UI
// teardown paths can call this unconditionally.
func (h *ReservationHandler) Release(c echo.Context) error {
	screeningID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	seatID, ok := pathID(c, "seatID")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var body holdPayload
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	hold := model.Hold{
		Token:       body.Token,
		ScreeningID: screeningID,
		SeatID:      seatID,
		Version:     body.Version,
		ExpiresAt:   body.ExpiresAt,
	}
	if err := h.Reservations.Release(c.Request().Context(), hold); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": true})
}
