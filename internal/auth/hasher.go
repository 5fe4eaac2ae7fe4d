// Package auth covers credential hashing, login verification, and the JWT
// access tokens that bind HTTP requests to an authenticated session.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hash returns the SHA-256 hex digest of secret. Deterministic and unsalted:
// the stored digests predate this service and must keep verifying, so the
// transform cannot change without a data migration.
func Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether secret hashes to digest, comparing in constant time.
func Verify(secret, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(secret)), []byte(digest)) == 1
}
