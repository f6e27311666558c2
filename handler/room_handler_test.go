package handler

import (
	"modesta-resort-api/model"
	"modesta-resort-api/service"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func roomRouter(svc RoomService) http.Handler {
	h := NewRoomHandler(svc)
	r := chi.NewRouter()
	r.Get("/rooms/categories", ErrorHandlingMiddleware(h.ListCategories))
	r.Get("/rooms/categories/{slug}", ErrorHandlingMiddleware(h.GetCategory))
	r.Post("/rooms/check-availability", ErrorHandlingMiddleware(h.CheckAvailability))
	return r
}

func TestRoomHandler_GetCategory(t *testing.T) {
	svc := new(MockRoomService)
	svc.On("GetCategory", mock.Anything, "ocean-suite").Return(&model.RoomCategory{ID: 1, Slug: "ocean-suite"}, nil).Once()
	svc.On("GetCategory", mock.Anything, "missing").Return(nil, service.ErrRoomCategoryNotFound).Once()
	router := roomRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rooms/categories/ocean-suite", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"categorySlug":"ocean-suite"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rooms/categories/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoomHandler_ListCategories(t *testing.T) {
	svc := new(MockRoomService)
	svc.On("ListCategories", mock.Anything).Return([]model.RoomCategory{{ID: 1}, {ID: 2}}, nil).Once()

	rr := httptest.NewRecorder()
	roomRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rooms/categories", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":true`)
}

func TestRoomHandler_CheckAvailability(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		svc := new(MockRoomService)
		req := model.AvailabilityRequest{CategoryID: 1, CheckIn: "2026-07-01", CheckOut: "2026-07-03", Guests: 2}
		svc.On("CheckAvailability", mock.Anything, 0, req).
			Return(&model.Availability{Available: true, Count: 1, Rooms: []model.AvailableRoom{{ID: 21, RoomNumber: "101"}}}, nil).Once()

		rr := httptest.NewRecorder()
		roomRouter(svc).ServeHTTP(rr, jsonRequest(http.MethodPost, "/rooms/check-availability",
			`{"categoryId":1,"checkIn":"2026-07-01","checkOut":"2026-07-03","guests":2}`))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"available":true`)
	})

	t.Run("bad date format", func(t *testing.T) {
		svc := new(MockRoomService)
		rr := httptest.NewRecorder()
		roomRouter(svc).ServeHTTP(rr, jsonRequest(http.MethodPost, "/rooms/check-availability",
			`{"categoryId":1,"checkIn":"07/01/2026","checkOut":"2026-07-03"}`))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "CheckAvailability", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reversed dates", func(t *testing.T) {
		svc := new(MockRoomService)
		svc.On("CheckAvailability", mock.Anything, 0, mock.Anything).Return(nil, service.ErrInvalidStayDates).Once()

		rr := httptest.NewRecorder()
		roomRouter(svc).ServeHTTP(rr, jsonRequest(http.MethodPost, "/rooms/check-availability",
			`{"categoryId":1,"checkIn":"2026-07-03","checkOut":"2026-07-01"}`))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Check-out date must be after check-in date", decodeError(t, rr)["message"])
	})
}
