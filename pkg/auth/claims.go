package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role scopes what an access token may do. The dashboard owner is the only
// authenticated principal today.
type Role string

const (
	RoleOwner Role = "owner"
)

// OwnerSubject is the JWT subject for the single dashboard owner.
const OwnerSubject = "owner"

func (r Role) IsValid() bool {
	return r == RoleOwner
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Subject string
	Role    Role
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}
