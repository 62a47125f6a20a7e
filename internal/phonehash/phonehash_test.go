package phonehash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	s := NewHMACStrategy([]byte("salt"))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "+15551234567", "+15551234567"},
		{"spaces and dashes", " +1 (555) 123-45-67 ", "+15551234567"},
		{"double zero prefix", "0015551234567", "+15551234567"},
		{"national format kept as-is", "5551234567", "5551234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	s := NewHMACStrategy([]byte("salt"))

	for _, in := range []string{"", "   ", "+", "abc", "00"} {
		_, err := s.Normalize(in)
		assert.ErrorIs(t, err, ErrInvalidPhone, "input %q", in)
	}
}

func TestHash_EquivalentFormsMatch(t *testing.T) {
	s := NewHMACStrategy([]byte("salt"))

	h1, err := s.Hash("+15551234567")
	require.NoError(t, err)
	h2, err := s.Hash("+1 555 123-45-67")
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex sha256
}

func TestHash_SaltSeparatesDeployments(t *testing.T) {
	h1, err := NewHMACStrategy([]byte("salt-a")).Hash("+15551234567")
	require.NoError(t, err)
	h2, err := NewHMACStrategy([]byte("salt-b")).Hash("+15551234567")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
