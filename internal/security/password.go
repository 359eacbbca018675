package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the floor for the adaptive hashing cost factor.
const MinBcryptCost = 10

func HashPassword(password string, cost int) ([]byte, error) {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword compares in constant time via bcrypt.
func VerifyPassword(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
