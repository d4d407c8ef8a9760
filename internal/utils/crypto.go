// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

const apiKeyPrefix = "lsk_"

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// GenerateAPIKey returns the plaintext key. Callers store only its hash;
// the plaintext is shown to the admin exactly once at creation.
func GenerateAPIKey() (string, error) {
	randomPart, err := GenerateRandomString(32)
	if err != nil {
		return "", err
	}
	return apiKeyPrefix + randomPart, nil
}

// APIKeyDisplayPrefix returns the short leading fragment of a key that is
// safe to persist for identification in listings.
func APIKeyDisplayPrefix(key string) string {
	if len(key) <= 12 {
		return key
	}
	return key[:12]
}
