package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegate/cinema-booking/internal/handler"
	"github.com/cinegate/cinema-booking/internal/model"
	"github.com/cinegate/cinema-booking/internal/repository"
	"github.com/cinegate/cinema-booking/internal/router"
	"github.com/cinegate/cinema-booking/internal/service"
)

type apiFixture struct {
	e         *echo.Echo
	store     *repository.MemoryStore
	screening model.Screening
	seats     []model.Seat
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	movie := store.AddMovie(model.Movie{Title: "Stalker", Genre: "Sci-Fi"})
	screening, seats := store.AddScreening(movie.ID, time.Now().Add(6*time.Hour), 2, 2)

	reservations := service.NewReservationService(store, 5*time.Minute)
	bookings := service.NewBookingService(store, nil)

	e := echo.New()
	router.RegisterCatalog(e, handler.NewCatalogHandler(store), nil)
	router.RegisterBooking(e, handler.NewReservationHandler(reservations), handler.NewBookingHandler(bookings))
	return &apiFixture{e: e, store: store, screening: screening, seats: seats}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func (f *apiFixture) reserve(t *testing.T, seatID uint64) map[string]any {
	t.Helper()
	rec := f.do(t, http.MethodPost,
		fmt.Sprintf("/v1/screenings/%d/seats/%d/reserve", f.screening.ID, seatID), nil)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decodeJSON[map[string]any](t, rec)
}

func TestCatalogEndpoints(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodGet, "/v1/movies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	movies := decodeJSON[[]map[string]any](t, rec)
	require.Len(t, movies, 1)
	assert.Equal(t, "Stalker", movies[0]["title"])

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/v1/screenings/%d/seats", f.screening.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	seats := decodeJSON[[]map[string]any](t, rec)
	assert.Len(t, seats, 4)

	rec = f.do(t, http.MethodGet, "/v1/movies/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, string(repository.NotFound), body["error"])
}

func TestReserveConflictIs409(t *testing.T) {
	f := newAPI(t)
	seat := f.seats[0]

	f.reserve(t, seat.ID)

	rec := f.do(t, http.MethodPost,
		fmt.Sprintf("/v1/screenings/%d/seats/%d/reserve", f.screening.ID, seat.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, string(repository.SeatUnavailable), body["error"])
}

func TestReleaseAlwaysSucceeds(t *testing.T) {
	f := newAPI(t)
	seat := f.seats[0]
	hold := f.reserve(t, seat.ID)

	path := fmt.Sprintf("/v1/screenings/%d/seats/%d/release", f.screening.ID, seat.ID)
	rec := f.do(t, http.MethodPost, path, hold)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	// Releasing again with the same, now stale, hold is still a 200.
	rec = f.do(t, http.MethodPost, path, hold)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	f := newAPI(t)
	seat := f.seats[0]
	hold := f.reserve(t, seat.ID)

	rec := f.do(t, http.MethodPost, "/v1/bookings", map[string]any{
		"hold":           hold,
		"customer_name":  "Vera",
		"customer_email": "vera@example.com",
		"customer_phone": "555-0103",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	booking := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, string(model.BookingPending), booking["status"])
	id := uint64(booking["id"].(float64))
	version := uint32(booking["version"].(float64))

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/v1/bookings/%d/confirm", id),
		map[string]any{"version": version})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	confirmed := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, string(model.BookingConfirmed), confirmed["status"])

	// Cancel after confirm: terminal state, 409.
	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/v1/bookings/%d", id),
		map[string]any{"version": version + 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, string(repository.AlreadyFinalized), body["error"])

	rec = f.do(t, http.MethodGet, "/v1/bookings/user/vera@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeJSON[[]map[string]any](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, "Stalker", history[0]["movie_title"])
}

func TestConfirmStaleVersionIs409(t *testing.T) {
	f := newAPI(t)
	seat := f.seats[0]
	hold := f.reserve(t, seat.ID)

	rec := f.do(t, http.MethodPost, "/v1/bookings", map[string]any{
		"hold":           hold,
		"customer_name":  "Vera",
		"customer_email": "vera@example.com",
		"customer_phone": "555-0103",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	booking := decodeJSON[map[string]any](t, rec)
	id := uint64(booking["id"].(float64))

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/v1/bookings/%d/confirm", id),
		map[string]any{"version": 42})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, string(repository.VersionMismatch), body["error"])
}

func TestCreateBookingValidationIs400(t *testing.T) {
	f := newAPI(t)
	seat := f.seats[0]
	hold := f.reserve(t, seat.ID)

	rec := f.do(t, http.MethodPost, "/v1/bookings", map[string]any{
		"hold":           hold,
		"customer_name":  "Vera",
		"customer_email": "not-an-email",
		"customer_phone": "555-0103",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, string(repository.ValidationFailed), body["error"])
}

func TestGetUnknownBookingIs404(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodGet, "/v1/bookings/12345", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
