package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

var hashSalt string

func init() {
	// Load salt from environment or fall back to a default.
	// In production, set LOG_HASH_SALT environment variable.
	hashSalt = os.Getenv("LOG_HASH_SALT")
	if hashSalt == "" {
		hashSalt = "default-salt-change-in-production"
	}
}

// HashUserID creates a privacy-preserving hash of a user ID.
// This allows correlating a user's ledger activity in logs without
// exposing actual user IDs.
func HashUserID(userID int64) string {
	data := fmt.Sprintf("%d:%s", userID, hashSalt)
	hash := sha256.Sum256([]byte(data))
	// Return first 8 characters for readability
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeNote redacts free-text settlement notes and expense
// descriptions while preserving length information for debugging.
func SanitizeNote(note string) string {
	if note == "" {
		return "<empty>"
	}

	words := strings.Fields(note)
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(words), len(note))
}
