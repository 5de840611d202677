// Package password provides one-way salted password hashing with
// constant-time verification.
package password

import (
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/server/config"
)

// Hasher hashes plaintext passwords and verifies candidates against a
// stored hash. Every Hash call uses a freshly generated salt.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// NewHasher builds the hasher selected in cfg.
func NewHasher(cfg *config.Config) (Hasher, error) {
	switch cfg.PasswordHasher {
	case config.PasswordHasherBcrypt:
		return NewBcrypt(cfg.BcryptCost)
	case config.PasswordHasherArgon2id:
		return NewArgon2id(DefaultArgon2Params()), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", cfg.PasswordHasher)
	}
}
