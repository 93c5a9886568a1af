// Package password hashes and verifies member passwords with bcrypt.
package password

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest password bcrypt accepts without truncation.
const MaxLength = 72

var ErrMismatch = errors.New("password mismatch")

// Hasher is safe for concurrent use.
type Hasher struct {
	cost int

	// dummy is compared against when no member matches a login, so unknown
	// identifiers cost the same bcrypt work as a wrong password.
	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher returns a Hasher using cost; out-of-range costs use bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Compare returns nil when plain matches hash and ErrMismatch otherwise.
func (h *Hasher) Compare(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}

// CompareDummy burns one comparison at the hasher's cost. It always fails.
func (h *Hasher) CompareDummy(plain string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("no member has this password"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
