package auth

import (
	"time"

	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAnalyst    Role = "Analyst"
	RoleCEO        Role = "CEO"
	RoleGroupOwner Role = "GroupOwner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAnalyst, RoleCEO, RoleGroupOwner:
		return true
	}
	return false
}

// User is a seeded account. Users never self-register.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

func (u *User) ToSession() *internal.SessionUser {
	return &internal.SessionUser{
		ID:       u.ID,
		Username: u.Username,
		Role:     string(u.Role),
	}
}

// TokenGenerator creates and validates session tokens.
type TokenGenerator interface {
	GenerateAccessToken(u *User) (string, error)
	GenerateRefreshToken(u *User) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
