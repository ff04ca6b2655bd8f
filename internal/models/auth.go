package models

import "github.com/golang-jwt/jwt/v5"

// UserRole mirrors the role claim issued by the main admin API.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleStaff      UserRole = "STAFF"
)

// JWTClaims are the access-token claims this service validates. Tokens are
// issued elsewhere; only the shared secret is configured here.
type JWTClaims struct {
	UserID string   `json:"uid"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
