package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ApiKeyPrefix marks context-store API key secrets.
const ApiKeyPrefix = "ctx_"

var randomRead = rand.Read

// GenerateApiKeySecret generates a new API key secret: the ctx_ prefix
// followed by 64 hex characters (32 bytes of entropy).
func GenerateApiKeySecret() (string, error) {
	token, err := GenerateRandomToken(32)
	if err != nil {
		return "", err
	}
	return ApiKeyPrefix + token, nil
}

// GenerateRandomToken generates a random hex token from n random bytes
func GenerateRandomToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// HashSecret returns the hex-encoded SHA-256 digest of a secret. API key
// secrets are high-entropy random tokens, so no salt is needed.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
