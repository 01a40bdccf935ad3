package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateApiKeySecret(t *testing.T) {
	secret, err := GenerateApiKeySecret()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(secret, ApiKeyPrefix))
	assert.Len(t, secret, len(ApiKeyPrefix)+64)

	other, err := GenerateApiKeySecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestHashSecret(t *testing.T) {
	digest := HashSecret("ctx_abc")
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, HashSecret("ctx_abc"))
	assert.NotEqual(t, digest, HashSecret("ctx_abd"))
}
