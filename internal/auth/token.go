package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		Issuer:             "plant-dashboard",
		now:                time.Now,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(sub Subject) (string, time.Time, error) {
	expiresAt := j.clock().Add(j.AccessTokenTTL)
	token, err := j.sign(sub, AccessToken, expiresAt, j.AccessTokenSecret)
	return token, expiresAt, err
}

func (j *JWTTokenGenerator) GenerateRefreshToken(sub Subject) (string, error) {
	return j.sign(sub, RefreshToken, j.clock().Add(j.RefreshTokenTTL), j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, AccessToken, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, RefreshToken, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(sub Subject, typ TokenType, expiresAt time.Time, secret []byte) (string, error) {
	now := j.clock()
	claims := &Claims{
		UserID:    sub.UserID,
		Username:  sub.Username,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.Issuer,
			Subject:   strconv.FormatInt(sub.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) validate(tokenString string, typ TokenType, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithTimeFunc(j.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != typ || claims.UserID <= 0 {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

func (j *JWTTokenGenerator) clock() time.Time {
	if j.now == nil {
		return time.Now()
	}
	return j.now()
}
