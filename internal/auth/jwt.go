package auth

import (
	"errors"
	"strconv"
	"time"

	"feeportal/config"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

func newClaims(cfg *config.JWTConfig, userID uint, email, role string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
		},
	}
}

func GenerateAccessToken(cfg *config.JWTConfig, userID uint, email, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims(cfg, userID, email, role, cfg.AccessExpiry))
	return token.SignedString([]byte(cfg.AccessSecret))
}

// GenerateRefreshToken signs with the refresh secret.
func GenerateRefreshToken(cfg *config.JWTConfig, userID uint, email, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims(cfg, userID, email, role, cfg.RefreshExpiry))
	return token.SignedString([]byte(cfg.RefreshSecret))
}

func ParseAccessToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	return parse(tokenString, cfg.AccessSecret)
}

func ParseRefreshToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	return parse(tokenString, cfg.RefreshSecret)
}

func parse(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
