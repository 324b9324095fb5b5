package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKeyIsUnique(t *testing.T) {
	first, err := GenerateAPIKey()
	require.NoError(t, err)
	second, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestVerifyAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	hash := HashAPIKey(key, "deployment-salt")

	assert.True(t, VerifyAPIKey(key, "deployment-salt", hash))
	assert.False(t, VerifyAPIKey("wrong-key", "deployment-salt", hash))
	assert.False(t, VerifyAPIKey(key, "other-salt", hash))
}
