package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameTokenRoundTrip(t *testing.T) {
	token, err := NameToken("secret", "Alice")
	require.NoError(t, err)

	name, err := ParseNameToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
}

func TestParseNameTokenWrongSecret(t *testing.T) {
	token, err := NameToken("secret", "Alice")
	require.NoError(t, err)

	_, err = ParseNameToken("other", token)
	assert.Error(t, err)
}

func TestParseNameTokenGarbage(t *testing.T) {
	_, err := ParseNameToken("secret", "not.a.token")
	assert.Error(t, err)
}
