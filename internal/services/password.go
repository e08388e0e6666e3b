package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/labstack/gommon/random"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength      = 16
	pbkdf2Iters     = 10000
	pbkdf2KeyLength = 32
)

// NewSalt generates a random per-user password salt
func NewSalt() string {
	return random.String(saltLength)
}

// HashPassword derives a hex-encoded PBKDF2-SHA256 hash of the password
// with the given salt
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iters, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword compares a candidate password against a stored hash in
// constant time
func VerifyPassword(password, salt, storedHash string) bool {
	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}
