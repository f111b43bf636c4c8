package utils

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned for passwords bcrypt would silently truncate.
var ErrPasswordTooLong = errors.New("password must not exceed 72 bytes")

// PasswordCost is the bcrypt work factor for new credentials.
var PasswordCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(hash), err
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	decoyOnce sync.Once
	decoyHash []byte
)

// BurnPasswordCheck spends the same time as a real comparison. It is used when
// no credential exists so unknown emails cannot be told apart by latency.
func BurnPasswordCheck(password string) {
	decoyOnce.Do(func() {
		decoyHash, _ = bcrypt.GenerateFromPassword([]byte("decoy-password"), PasswordCost)
	})
	_ = bcrypt.CompareHashAndPassword(decoyHash, []byte(password))
}
