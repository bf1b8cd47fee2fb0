package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// Credential artifact lifetimes.
const (
	VerificationCodeTTL = 30 * time.Minute
	ResetTokenTTL       = time.Hour
)

// GenerateVerificationCode returns a uniformly random 6-digit numeric code.
func GenerateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateResetToken returns a raw password-reset token (32 random bytes,
// hex encoded) together with its SHA-256 hash. Only the hash is ever
// persisted; the raw value is sent to the user once.
func GenerateResetToken() (raw, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), nil
}

// HashResetToken computes the stored form of a raw reset token.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
