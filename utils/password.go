package utils

import (
	"fmt"

	"github.com/matthewhartstonge/argon2"
)

// HashPassword derives an argon2id hash of the password. The encoded form
// is self-describing, so the cost parameters can change later without
// invalidating hashes already stored.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("hash password: password must not be empty")
	}

	cfg := argon2.DefaultConfig()
	encoded, err := cfg.HashEncoded([]byte(password))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(encoded), nil
}

// VerifyPassword reports whether password matches the stored hash. A plain
// mismatch is (false, nil); an error means the stored hash could not be
// parsed and the account needs attention.
func VerifyPassword(encodedHash, password string) (bool, error) {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	return ok, nil
}
