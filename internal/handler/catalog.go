package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinegate/cinema-booking/internal/service"
)

// CatalogHandler serves the read-only movie/screening/seat listings the
// booking flow operates over. The catalog itself is created and maintained
// by an external process; nothing here writes.
type CatalogHandler struct {
	Store service.Store
}

// NewCatalogHandler constructs a CatalogHandler over the given store.
func NewCatalogHandler(store service.Store) *CatalogHandler {
	if store == nil {
		panic("nil store passed to NewCatalogHandler")
	}
	return &CatalogHandler{Store: store}
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// ListMovies handles GET /v1/movies.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	movies, err := h.Store.ListMovies(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, movies)
}

// GetMovie handles GET /v1/movies/:id.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	movie, err := h.Store.GetMovie(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, movie)
}

// ListScreenings handles GET /v1/movies/:id/screenings.
func (h *CatalogHandler) ListScreenings(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	// Ensure the movie exists so an unknown id is a 404, not an empty list.
	if _, err := h.Store.GetMovie(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	screenings, err := h.Store.ListScreeningsByMovie(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, screenings)
}

// GetScreening handles GET /v1/screenings/:id.
func (h *CatalogHandler) GetScreening(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	screening, err := h.Store.GetScreening(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, screening)
}

// ListSeats handles GET /v1/screenings/:id/seats. The order is
// deterministic (row label, then seat number) so polling clients can diff
// successive responses cheaply.
func (h *CatalogHandler) ListSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	if _, err := h.Store.GetScreening(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	seats, err := h.Store.ListSeats(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}
