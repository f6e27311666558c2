package model

import "time"

type Role string

const (
	RoleGuest      Role = "guest"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int        `json:"-"`
	UUID         string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Phone        *string    `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"-"`
	IsVerified   bool       `json:"isVerified"`
	LastLogin    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"-"`
}

// UserProfile is the joined view served by GET /auth/me.
type UserProfile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Phone          *string   `json:"phone"`
	Role           Role      `json:"role"`
	IsVerified     bool      `json:"isVerified"`
	LoyaltyPoints  int       `json:"loyaltyPoints"`
	LifetimePoints int       `json:"lifetimePoints"`
	TierName       *string   `json:"tierName"`
	TierLevel      *int      `json:"tierLevel"`
	City           *string   `json:"city"`
	Country        *string   `json:"country"`
	VIPStatus      bool      `json:"vipStatus"`
	MemberSince    time.Time `json:"memberSince"`
}
