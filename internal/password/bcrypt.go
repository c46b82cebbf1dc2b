package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/akorchak/urlstash-server/internal/model"
)

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt implements PasswordHasher on top of golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a hasher with the given cost; values below the bcrypt
// minimum fall back to the library default.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash derives a salted hash from a plaintext password.
func (b *Bcrypt) Hash(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// Compare reports whether password matches hash.
func (b *Bcrypt) Compare(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
