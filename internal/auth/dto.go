package auth

import "time"

// LoginRequest exchanges the owner credential for a session.
type LoginRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

// RefreshRequest carries the opaque refresh token; the expired access token
// travels in the Authorization header.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	Role         string    `json:"role"`
}
