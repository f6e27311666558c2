package model

// AuthResponse is the data payload of register and login.
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type Availability struct {
	Available bool            `json:"available"`
	Count     int             `json:"count"`
	Rooms     []AvailableRoom `json:"rooms"`
}
