package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength adalah batas panjang input bcrypt (dalam byte).
const MaxPasswordLength = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher membuat dan memverifikasi hash password dengan bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher memakai cost, kembali ke bcrypt.DefaultCost (10) jika cost
// di luar rentang yang diterima bcrypt.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash mengembalikan hash bcrypt (dengan salt) dari plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify melaporkan apakah plaintext cocok dengan hashed. Hash yang rusak
// dianggap tidak cocok, bukan error.
func (h *PasswordHasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
