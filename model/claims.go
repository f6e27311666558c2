package model

import "github.com/golang-jwt/jwt/v5"

// TokenUser is the sanitized identity embedded in tokens.
type TokenUser struct {
	UserID    int    `json:"user_id"`
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AppClaims struct {
	TokenUser
	jwt.RegisteredClaims
}

// NewTokenUser strips a user down to what may travel inside a token.
func NewTokenUser(u *User) TokenUser {
	return TokenUser{
		UserID:    u.ID,
		UUID:      u.UUID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
