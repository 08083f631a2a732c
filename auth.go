package main

import (
	"errors"
	"strings"
	"time"

	"custdesk/models"

	"github.com/golang-jwt/jwt/v5"
)

var errMissingBearer = errors.New("missing or invalid Authorization header")

// tokenClaims are the access-token claims: username, role and exp.
type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func issueAccessToken(user models.User) (string, error) {
	claims := tokenClaims{
		Username: user.Username,
		Role:     user.Role.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// parseBearer validates an "Authorization: Bearer <jwt>" header value.
func parseBearer(header string) (*tokenClaims, error) {
	if len(header) < 8 || header[:7] != "Bearer " {
		return nil, errMissingBearer
	}
	tokenString := strings.TrimSpace(header[7:])
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
