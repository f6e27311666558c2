package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"modesta-resort-api/common"
	"modesta-resort-api/metrics"
	"modesta-resort-api/model"
	"net/http"
)

const forgotPasswordMessage = "If an account exists with this email, a password reset link has been sent."

// AuthService is the behaviour AuthHandler needs from the service layer.
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID int, req model.LogoutRequest) error
	ForgotPassword(ctx context.Context, email string)
	ResetPassword(ctx context.Context, token, newPassword string) error
	Me(ctx context.Context, userID int) (*model.UserProfile, error)
}

type AuthHandler struct {
	service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register godoc
// @Summary      Register a guest account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      model.RegisterRequest  true  "Registration payload"
// @Success      201   {object}  common.Envelope{data=model.AuthResponse}
// @Failure      400   {object}  common.AppError
// @Failure      409   {object}  common.AppError
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	resp, err := h.service.Register(r.Context(), req)
	metrics.RecordAuthEvent(metrics.EventRegister, err == nil)
	if err != nil {
		return serviceError(err, "Could not register user")
	}

	message := "Registration successful"
	if resp.AccessToken == "" {
		message = "Registration successful. Please log in."
	}
	common.Respond(w, http.StatusCreated, message, resp)
	return nil
}

// Login godoc
// @Summary      Log in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      model.LoginRequest  true  "Credentials"
// @Success      200   {object}  common.Envelope{data=model.AuthResponse}
// @Failure      401   {object}  common.AppError
// @Failure      403   {object}  common.AppError
// @Failure      429   {object}  common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	resp, err := h.service.Login(r.Context(), req)
	metrics.RecordAuthEvent(metrics.EventLogin, err == nil)
	if err != nil {
		return serviceError(err, "Could not log in")
	}

	common.Respond(w, http.StatusOK, "Login successful", resp)
	return nil
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      model.RefreshRequest  true  "Refresh token"
// @Success      200   {object}  common.Envelope{data=model.RefreshResponse}
// @Failure      400   {object}  common.AppError
// @Failure      401   {object}  common.AppError
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return common.NewAppError(http.StatusBadRequest, "Invalid request body", nil)
	}
	if req.RefreshToken == "" {
		return common.NewAppError(http.StatusBadRequest, "Refresh token is required", nil)
	}

	access, err := h.service.Refresh(r.Context(), req.RefreshToken)
	metrics.RecordAuthEvent(metrics.EventRefresh, err == nil)
	if err != nil {
		return serviceError(err, "Could not refresh token")
	}

	common.Respond(w, http.StatusOK, "Token refreshed successfully", model.RefreshResponse{AccessToken: access})
	return nil
}

// Logout godoc
// @Summary      Revoke one refresh token or all sessions
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      model.LogoutRequest  false  "Token to revoke"
// @Success      200   {object}  common.Envelope
// @Failure      401   {object}  common.AppError
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, msgAuthRequired, nil)
	}

	var req model.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return common.NewAppError(http.StatusBadRequest, "Invalid request body", nil)
	}

	err := h.service.Logout(r.Context(), user.ID, req)
	metrics.RecordAuthEvent(metrics.EventLogout, err == nil)
	if err != nil {
		return serviceError(err, "Could not log out")
	}

	common.Respond(w, http.StatusOK, "Logout successful", nil)
	return nil
}

// ForgotPassword godoc
// @Summary      Request a password reset link
// @Description  Always answers with the same message whether or not the account exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      model.ForgotPasswordRequest  true  "Account email"
// @Success      200   {object}  common.Envelope
// @Failure      400   {object}  common.AppError
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ForgotPasswordRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	h.service.ForgotPassword(r.Context(), req.Email)

	common.Respond(w, http.StatusOK, forgotPasswordMessage, nil)
	return nil
}

// ResetPassword godoc
// @Summary      Set a new password with a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      model.ResetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  common.Envelope
// @Failure      400   {object}  common.AppError
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ResetPasswordRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword)
	metrics.RecordAuthEvent(metrics.EventPasswordReset, err == nil)
	if err != nil {
		return serviceError(err, "Could not reset password")
	}

	common.Respond(w, http.StatusOK, "Password reset successful. Please login with your new password.", nil)
	return nil
}

// Me godoc
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.Envelope{data=model.UserProfile}
// @Failure      401  {object}  common.AppError
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, msgAuthRequired, nil)
	}

	profile, err := h.service.Me(r.Context(), user.ID)
	if err != nil {
		return serviceError(err, "Could not load profile")
	}

	common.Respond(w, http.StatusOK, "", profile)
	return nil
}
