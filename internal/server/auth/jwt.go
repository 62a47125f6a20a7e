// Package auth issues and verifies the two stateless tokens the server
// hands out: short-lived access tokens and invite-link tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/notelinkapp/notelink/internal/common"
)

// Claims carries the standard claims plus the account the token is bound to.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
}

// InviteClaims attributes an accepted invite back to its issuer. Invite
// tokens are deliberately unexpiring: a link pasted into a chat may be
// opened much later.
type InviteClaims struct {
	jwt.RegisteredClaims
	InviterID string `json:"inviter_id"`
}

// GenerateToken issues an HS256 access token for the given account.
func GenerateToken(accountID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		AccountID: accountID,
	})

	return token.SignedString(secretKey)
}

// GetAccountIDFromToken validates an access token and returns the account it
// is bound to. Expired tokens map to common.ErrTokenExpired, everything else
// invalid to common.ErrInvalidToken.
func GetAccountIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.AccountID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.AccountID, nil
}

// GenerateInviteToken issues the opaque token embedded in an invite link.
func GenerateInviteToken(inviterID string, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, InviteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		InviterID: inviterID,
	})

	return token.SignedString(secretKey)
}

// ParseInviteToken returns the inviter account encoded in an invite token.
func ParseInviteToken(tokenString string, secretKey []byte) (string, error) {
	claims := &InviteClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil || !token.Valid || claims.InviterID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.InviterID, nil
}
