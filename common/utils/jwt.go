package utils

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

var jwtSecret []byte

type Claims struct {
	UserID   string `json:"userId"`
	PlayerID string `json:"playerId"`
	jwt.StandardClaims
}

func (c Claims) Valid() error {
	return c.StandardClaims.Valid()
}

// SetJWTSecret sets the secret used to sign tokens. Call once during
// application startup.
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func GenerateJWTTokenWithClaims(claims Claims) (string, error) {
	claims.StandardClaims = jwt.StandardClaims{
		ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		IssuedAt:  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateJWTTokenWithClaims parses and validates a token, returning
// the embedded claims.
func ValidateJWTTokenWithClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.UserID == "" {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}
