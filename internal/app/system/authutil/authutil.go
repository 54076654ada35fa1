// Package authutil holds password hashing and validation shared by the
// login, change-password, and user-management paths.
package authutil

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds. The upper bound is bcrypt's 72-byte input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// DefaultBcryptCost is the house cost factor. Configurable at startup for
// test speed; never lowered in production config.
const DefaultBcryptCost = 12

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters")
	ErrPasswordCommon   = errors.New("password is too common")
)

// commonPasswords are rejected regardless of length, compared case-insensitively.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"qwerty123":   {},
	"iloveyou":    {},
	"letmein123":  {},
}

var (
	costMu sync.RWMutex
	cost   = DefaultBcryptCost
)

// SetCost overrides the bcrypt cost factor. Values outside bcrypt's
// supported range are ignored.
func SetCost(c int) {
	if c < bcrypt.MinCost || c > bcrypt.MaxCost {
		return
	}
	costMu.Lock()
	cost = c
	costMu.Unlock()
}

// ValidatePassword enforces the password policy for new passwords.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, bad := commonPasswords[strings.ToLower(password)]; bad {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules returns the policy text shown to users alongside
// validation failures.
func PasswordRules() string {
	return "Passwords must be 8-72 characters and not a commonly used password."
}

// HashPassword hashes a password with bcrypt at the configured cost.
func HashPassword(password string) (string, error) {
	costMu.RLock()
	c := cost
	costMu.RUnlock()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt digest.
// Fails closed: a malformed digest returns false rather than an error.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
