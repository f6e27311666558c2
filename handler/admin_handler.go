package handler

import (
	"context"
	"modesta-resort-api/common"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type UserAdminService interface {
	Deactivate(ctx context.Context, actorID, userID int) error
}

type AdminHandler struct {
	service UserAdminService
}

func NewAdminHandler(service UserAdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// DeactivateUser godoc
// @Summary      Deactivate a user and revoke their sessions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  common.Envelope
// @Failure      403  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /admin/users/{id}/deactivate [post]
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	actor, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, msgAuthRequired, nil)
	}

	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || userID <= 0 {
		return common.NewAppError(http.StatusBadRequest, "Invalid user ID", nil)
	}

	if err := h.service.Deactivate(r.Context(), actor.ID, userID); err != nil {
		return serviceError(err, "Could not deactivate user")
	}

	common.Respond(w, http.StatusOK, "User deactivated", nil)
	return nil
}
