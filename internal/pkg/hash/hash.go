// Package hash provides password hashing used by the development identity
// server.
package hash

// Hash hashes and verifies secrets.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}
