package helpers

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Bytes returns the hex-encoded SHA-256 digest of the input. Used to
// tag fetched and cached artifacts in logs so the same image can be matched
// across sessions.
func SHA256Bytes(input []byte) string {
	hash := sha256.Sum256(input)
	return hex.EncodeToString(hash[:])
}
