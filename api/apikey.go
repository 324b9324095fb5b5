package api

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const apiKeyBytes = 24

// argon2id parameters for API key hashing. The salt is a deployment-wide
// secret, so the hash is deterministic and the key can be verified without
// storing the salt per server.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// GenerateAPIKey returns a fresh random API key. The plaintext is shown to
// the caller exactly once at registration; only the hash is stored.
func GenerateAPIKey() (string, error) {
	raw := make([]byte, apiKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashAPIKey derives the stored hash for an API key.
func HashAPIKey(key, salt string) string {
	hash := argon2.IDKey([]byte(key), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(hash)
}

// VerifyAPIKey reports whether key hashes to storedHash under salt.
func VerifyAPIKey(key, salt, storedHash string) bool {
	computed := HashAPIKey(key, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
