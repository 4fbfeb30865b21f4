package auth

import (
	"errors"
	"time"

	"github.com/boycottpro/users/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken signs an HS256 token whose subject is userID.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
	})

	return token.SignedString(secretKey)
}

// ParseSubject verifies tokenString and returns its "sub" claim. Any
// verification failure, and a blank subject, is reported as
// common.ErrUnauthorized wrapping the cause.
func ParseSubject(tokenString string, secretKey []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Join(common.ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", common.ErrUnauthorized
	}

	return claims.Subject, nil
}
