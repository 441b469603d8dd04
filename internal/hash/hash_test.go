package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", h)
	assert.True(t, CheckPassword(h, "Str0ng!Pass"))
	assert.False(t, CheckPassword(h, "str0ng!pass"))
	assert.False(t, CheckPassword("garbage", "Str0ng!Pass"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pw   string
		want error
	}{
		{"ok", "Str0ng!Pass", nil},
		{"short", "S0!a", ErrPasswordLength},
		{"no digit", "Strong!Pass", ErrPasswordDigit},
		{"no upper", "str0ng!pass", ErrPasswordUpper},
		{"no lower", "STR0NG!PASS", ErrPasswordLower},
		{"no special", "Str0ngPass", ErrPasswordSpecial},
		{"underscore counts as special", "Str0ng_Pass", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, ValidatePassword(tt.pw), tt.want)
		})
	}
}
