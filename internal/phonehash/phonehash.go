// Package phonehash turns raw phone numbers into the privacy-preserving
// lookup keys exchanged with the directory. Raw numbers never cross the
// network: both client and server hash through the same Strategy, keyed by a
// deployment-wide salt.
package phonehash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when a number has no digits left after
// normalization.
var ErrInvalidPhone = errors.New("invalid phone number")

// Strategy normalizes and hashes phone numbers. Implementations must be
// deterministic so that independently hashed copies of the same number match.
type Strategy interface {
	// Normalize canonicalizes a raw number (spacing, punctuation, prefixes).
	Normalize(raw string) (string, error)

	// Hash maps a raw number to its directory lookup key.
	Hash(raw string) (string, error)
}

// HMACStrategy normalizes to digits-with-leading-plus and hashes with
// HMAC-SHA256 under a shared salt.
type HMACStrategy struct {
	salt []byte
}

func NewHMACStrategy(salt []byte) *HMACStrategy {
	return &HMACStrategy{salt: salt}
}

// Normalize strips everything but digits, converts a leading "00" to "+",
// and preserves a leading "+". It does not attempt full E.164 validation;
// the directory only needs both sides to canonicalize identically.
func (s *HMACStrategy) Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	plus := strings.HasPrefix(trimmed, "+")

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return "", ErrInvalidPhone
	}

	if !plus && strings.HasPrefix(digits, "00") {
		digits = digits[2:]
		if digits == "" {
			return "", ErrInvalidPhone
		}
		plus = true
	}

	if plus {
		return "+" + digits, nil
	}
	return digits, nil
}

func (s *HMACStrategy) Hash(raw string) (string, error) {
	normalized, err := s.Normalize(raw)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, s.salt)
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil)), nil
}
