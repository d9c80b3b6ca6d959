package auth

import (
	"github.com/google/uuid"
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is deliberately above the library default; hashing is
// the one intentional latency source in this package.
var DefaultBcryptCost = 12

// dummyPasswordHash is compared against when a login targets an unknown
// email, so the miss costs roughly the same as a real mismatch.
var dummyPasswordHash = func() string {
	h, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), DefaultBcryptCost)
	return string(h)
}()

// HashPassword will generate a password hash at the default cost
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultBcryptCost)
}

// HashPasswordCost will generate a password hash at the given cost
func HashPasswordCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}
	if cost <= 0 {
		cost = DefaultBcryptCost
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password
// matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if goerrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// burnPasswordComparison spends a bcrypt comparison without revealing
// anything, keeping unknown-email and wrong-password latency comparable.
func burnPasswordComparison(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
}

// RandomPasswordHash is a hash no input matches, used to seed accounts
// created without a password.
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
