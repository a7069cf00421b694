package app

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns secrets (passwords, security answers) into stored hashes.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(hash, secret string) bool
}

// SHA256Hasher stores the hex SHA-256 digest of the secret. It is unsalted and
// fast, which keeps existing users.json files valid but is weak against offline
// attacks. Prefer BcryptHasher for new deployments.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(secret string) (string, error) {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(hash, secret string) bool {
	got, _ := h.Hash(secret)
	return subtle.ConstantTimeCompare([]byte(got), []byte(hash)) == 1
}

// BcryptHasher stores salted bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptHasher) Verify(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// NewHasher picks a hasher by its config name.
func NewHasher(name string, bcryptCost int) (PasswordHasher, error) {
	switch name {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		return BcryptHasher{Cost: bcryptCost}, nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", name)
}
