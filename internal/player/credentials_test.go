package player

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name string
		user string
		pass string
		want error
	}{
		{"ok", "john_1", "john123", nil},
		{"short username", "jo", "john123", ErrInvalidUsername},
		{"long username", strings.Repeat("a", 25), "john123", ErrInvalidUsername},
		{"bad character", "jo hn", "john123", ErrInvalidUsername},
		{"empty password", "john", "", ErrInvalidPassword},
		{"long password", "john", strings.Repeat("p", 101), ErrInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.user, tt.pass)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	h, err := HashPassword("john123")
	require.NoError(t, err)
	assert.NotEqual(t, "john123", h)
	assert.True(t, CheckPassword(h, "john123"))
	assert.False(t, CheckPassword(h, "john124"))
	assert.False(t, CheckPassword("", "john123"))
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "John", NormalizeUsername("  John \n"))
}
