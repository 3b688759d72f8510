package security

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost used across the deployment; stored
// hashes produced with a lower cost are upgraded on successful login.
const DefaultBcryptCost = 12

func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordNeedsRehash reports whether a stored hash was produced with
// outdated parameters. An unparseable hash counts as outdated.
func PasswordNeedsRehash(hash string, cost int) bool {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	current, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return current < cost
}
