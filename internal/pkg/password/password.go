package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for stored hashes
const Cost = 12

// Hash hashes password using bcrypt.
// Passwords longer than 72 bytes are rejected with bcrypt.ErrPasswordTooLong.
func Hash(password string) (string, error) {
	return hashWithCost(password, Cost)
}

func hashWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
