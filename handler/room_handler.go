package handler

import (
	"context"
	"modesta-resort-api/common"
	"modesta-resort-api/model"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type RoomService interface {
	ListCategories(ctx context.Context) ([]model.RoomCategory, error)
	GetCategory(ctx context.Context, slug string) (*model.RoomCategory, error)
	CheckAvailability(ctx context.Context, userID int, req model.AvailabilityRequest) (*model.Availability, error)
}

type RoomHandler struct {
	service RoomService
}

func NewRoomHandler(service RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// ListCategories godoc
// @Summary      List room categories
// @Tags         rooms
// @Produce      json
// @Success      200  {object}  common.Envelope{data=[]model.RoomCategory}
// @Router       /rooms/categories [get]
func (h *RoomHandler) ListCategories(w http.ResponseWriter, r *http.Request) *common.AppError {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		return serviceError(err, "Could not retrieve room categories")
	}
	common.Respond(w, http.StatusOK, "", categories)
	return nil
}

// GetCategory godoc
// @Summary      Room category by slug
// @Tags         rooms
// @Produce      json
// @Param        slug  path      string  true  "Category slug"
// @Success      200   {object}  common.Envelope{data=model.RoomCategory}
// @Failure      404   {object}  common.AppError
// @Router       /rooms/categories/{slug} [get]
func (h *RoomHandler) GetCategory(w http.ResponseWriter, r *http.Request) *common.AppError {
	category, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return serviceError(err, "Could not retrieve room category")
	}
	common.Respond(w, http.StatusOK, "", category)
	return nil
}

// CheckAvailability godoc
// @Summary      Free rooms of a category for a stay
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        body  body      model.AvailabilityRequest  true  "Stay"
// @Success      200   {object}  common.Envelope{data=model.Availability}
// @Failure      400   {object}  common.AppError
// @Failure      404   {object}  common.AppError
// @Router       /rooms/check-availability [post]
func (h *RoomHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.AvailabilityRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	var userID int
	if user, ok := UserFromContext(r.Context()); ok {
		userID = user.ID
	}

	availability, err := h.service.CheckAvailability(r.Context(), userID, req)
	if err != nil {
		return serviceError(err, "Could not check availability")
	}
	common.Respond(w, http.StatusOK, "", availability)
	return nil
}
