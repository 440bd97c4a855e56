package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken : hex-encoded random token with byteLength*8 bits of entropy.
// Verification, reset and share tokens all use 32 bytes (256 bits).
func GenerateToken(byteLength int) (string, error) {
	bytes := make([]byte, byteLength)

	_, err := rand.Read(bytes)
	if err != nil {
		return "", LogError("token generation failed", err)
	}

	return hex.EncodeToString(bytes), nil
}
