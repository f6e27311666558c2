// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new guest account.
type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required,strongpassword"`
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest revokes one refresh token, or every session when AllDevices is set
// or no token is given.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
	AllDevices   bool   `json:"allDevices"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpassword"`
}

// AvailabilityRequest uses YYYY-MM-DD dates.
type AvailabilityRequest struct {
	CategoryID int    `json:"categoryId" validate:"required,gt=0"`
	CheckIn    string `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"checkOut" validate:"required,datetime=2006-01-02"`
	Guests     int    `json:"guests" validate:"omitempty,gt=0,lte=20"`
}
