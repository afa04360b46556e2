package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/yukikurage/taskledger/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a password into the hex string kept in the
// password field of a user record.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// NewPasswordHasher returns the hasher for a config.Auth password scheme.
func NewPasswordHasher(scheme string, bcryptCost int) (PasswordHasher, error) {
	switch scheme {
	case config.SchemeSHA256, "":
		return SHA256Hasher{}, nil
	case config.SchemeBcrypt:
		if bcryptCost == 0 {
			bcryptCost = bcrypt.DefaultCost
		}
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", bcryptCost)
		}
		return BcryptHasher{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// SHA256Hasher stores the unsalted SHA-256 digest, the format existing
// collections already use.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(stored, password string) bool {
	hashed, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(stored)) == 1
}

// BcryptHasher stores the bcrypt hash hex-encoded so the field stays a hex
// string.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return hex.EncodeToString(hashed), nil
}

func (BcryptHasher) Verify(stored, password string) bool {
	hashed, err := hex.DecodeString(stored)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(hashed, []byte(password)) == nil
}
