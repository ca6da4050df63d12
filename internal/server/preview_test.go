package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewTokens_RoundTrip(t *testing.T) {
	tokens := NewPreviewTokens("secret", time.Minute)

	token, err := tokens.Issue("about")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "about", claims.Slug)
}

func TestPreviewTokens_Expired(t *testing.T) {
	tokens := NewPreviewTokens("secret", time.Minute)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	token, err := tokens.Issue("about")
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestPreviewTokens_WrongSecret(t *testing.T) {
	token, err := NewPreviewTokens("secret", time.Minute).Issue("about")
	require.NoError(t, err)

	_, err = NewPreviewTokens("other", time.Minute).Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestPreviewTokens_RejectsOtherAlgorithms(t *testing.T) {
	tokens := NewPreviewTokens("secret", time.Minute)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &PreviewClaims{Slug: "about"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Validate(unsigned)
	assert.Error(t, err)
}

func TestPreviewTokens_Disabled(t *testing.T) {
	tokens := NewPreviewTokens("", 0)
	assert.False(t, tokens.Enabled())
	assert.False(t, tokens.CheckSecret(""))

	_, err := tokens.Issue("about")
	assert.ErrorIs(t, err, ErrPreviewDisabled)

	_, err = tokens.Validate("anything")
	assert.ErrorIs(t, err, ErrPreviewDisabled)
}

func TestRedirectPath(t *testing.T) {
	tests := []struct {
		slug   string
		want   string
		wantOK bool
	}{
		{"home", "/", true},
		{"about", "/about", true},
		{"blog/post-1", "/blog/post-1", true},
		{"/about", "/about", true},
		{"//evil.test", "", false},
		{`\\evil.test`, "", false},
		{"\t/evil.test", "", false},
		{"\n//evil.test", "", false},
		{"https://evil.test", "", false},
		{"about/../../x", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.slug), func(t *testing.T) {
			got, ok := redirectPath(tt.slug)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
