// Package auth issues and verifies the stateless session tokens that bind a
// user identity to a request. Tokens are HS256-signed JWTs; there is no
// revocation, a token stays valid until its expiry.
package auth

import (
	"errors"
	"time"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64  `json:"uid"`
	DisplayName string `json:"name"`
}

// IssueToken signs a token embedding the user id and display name, valid for
// validityDuration from now.
func IssueToken(userID int64, displayName string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:      userID,
		DisplayName: displayName,
	})

	return token.SignedString(secretKey)
}

// UserIDFromToken verifies the signature and expiry of tokenString and
// returns the embedded user id. Failures map to the common token sentinels:
// ErrTokenExpired, ErrTokenMalformed, or ErrTokenInvalidClaims when the
// user-id claim is absent or non-positive.
func UserIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return 0, common.ErrTokenMalformed
		default:
			return 0, common.ErrTokenMalformed
		}
	}

	if !token.Valid {
		return 0, common.ErrTokenMalformed
	}

	if claims.UserID <= 0 {
		return 0, common.ErrTokenInvalidClaims
	}

	return claims.UserID, nil
}
