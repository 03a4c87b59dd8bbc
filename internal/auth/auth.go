package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Subject is what gets encoded into a token.
type Subject struct {
	UserID   int64
	Username string
}

// TokenGenerator creates and validates signed tokens.
type TokenGenerator interface {
	GenerateAccessToken(sub Subject) (token string, expiresAt time.Time, err error)
	GenerateRefreshToken(sub Subject) (token string, err error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Issuer             string
	now                func() time.Time
}

// Credentials is the stored login material for a username.
type Credentials struct {
	UserID       int64
	PasswordHash string
	IsActive     bool
}
