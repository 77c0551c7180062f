package helpers

import (
	"fmt"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// Hasher produces slow, salted one-way digests for passwords and refresh tokens.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// MaxSecretBytes bounds secrets for hashers without an intrinsic input limit.
const MaxSecretBytes = 1024

// MaxSecretLen reports the longest secret, in bytes, that h hashes without truncating or refusing it.
func MaxSecretLen(h Hasher) int {
	if l, ok := h.(interface{ MaxSecretLen() int }); ok {
		return l.MaxSecretLen()
	}
	return MaxSecretBytes
}

// BcryptHasher hashes with bcrypt at a fixed cost. Inputs are limited to 72 bytes.
type BcryptHasher struct {
	Cost int
}

func (h *BcryptHasher) MaxSecretLen() int { return 72 }

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{Cost: cost}
}

// Hash hashes the plain text secret using bcrypt
func (h *BcryptHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a bcrypt digest with a plain secret
func (h *BcryptHasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// Argon2idHasher hashes with argon2id.
type Argon2idHasher struct {
	Params *argon2id.Params
}

// DefaultArgon2idParams: 64 MiB, 2 passes, 4 lanes.
var DefaultArgon2idParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

func NewArgon2idHasher(p *argon2id.Params) *Argon2idHasher {
	if p == nil {
		p = DefaultArgon2idParams
	}
	return &Argon2idHasher{Params: p}
}

func (h *Argon2idHasher) Hash(secret string) (string, error) {
	return argon2id.CreateHash(secret, h.Params)
}

func (h *Argon2idHasher) Verify(secret, digest string) bool {
	ok, err := argon2id.ComparePasswordAndHash(secret, digest)
	return err == nil && ok
}

// NewHasher picks the hasher named by kind ("bcrypt" or "argon2id").
func NewHasher(kind string, bcryptCost int) (Hasher, error) {
	switch kind {
	case "", "bcrypt":
		return NewBcryptHasher(bcryptCost), nil
	case "argon2id":
		return NewArgon2idHasher(nil), nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", kind)
}
