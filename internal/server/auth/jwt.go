// Package auth signs and checks the short-lived tokens that authorize a
// direct upload to the backend's local storage.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/suitenumerique/drive-sub001/internal/shared"
)

// UploadClaims binds a token to one item and one storage key.
type UploadClaims struct {
	jwt.RegisteredClaims
	ItemID string `json:"item_id"`
	Key    string `json:"key"`
}

// GenerateUploadToken returns an HS256 token allowing one PUT of key.
func GenerateUploadToken(itemID, key string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, UploadClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		ItemID: itemID,
		Key:    key,
	})

	return token.SignedString(secretKey)
}

// ParseUploadToken verifies tokenString and returns its claims.
// Expired tokens yield shared.ErrorExpiredToken, any other failure
// shared.ErrorInvalidToken.
func ParseUploadToken(tokenString string, secretKey []byte) (*UploadClaims, error) {
	claims := &UploadClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrorExpiredToken
		}
		return nil, shared.ErrorInvalidToken
	}

	if !token.Valid || claims.Key == "" {
		return nil, shared.ErrorInvalidToken
	}

	return claims, nil
}
