// Package cryptox wraps the one-way password hashing used for user
// credentials.
package cryptox

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the cost used for existing user records.
const DefaultCost = 10

// Hasher turns passwords into bcrypt verifiers and checks candidates
// against them.
type Hasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher returns a Hasher with the given bcrypt cost. Out-of-range costs
// fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the verifier for password.
func (h *Hasher) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), h.cost)
}

// Matches reports whether password matches verifier. A malformed verifier
// never matches.
func (h *Hasher) Matches(verifier []byte, password string) bool {
	err := bcrypt.CompareHashAndPassword(verifier, []byte(password))
	return err == nil
}

// Burn spends the same work as Matches against a verifier that nothing
// matches. Login calls it for unknown accounts so both failures cost alike.
func (h *Hasher) Burn(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyVerifier(), []byte(password))
}

func (h *Hasher) dummyVerifier() []byte {
	h.dummyOnce.Do(func() {
		v, err := bcrypt.GenerateFromPassword([]byte("gophfeed-no-such-user"), h.cost)
		if err != nil {
			// cost is validated in NewHasher
			panic(err)
		}
		h.dummy = v
	})
	return h.dummy
}

// IsTooLong reports whether err is bcrypt's rejection of passwords longer
// than 72 bytes.
func IsTooLong(err error) bool {
	return errors.Is(err, bcrypt.ErrPasswordTooLong)
}
