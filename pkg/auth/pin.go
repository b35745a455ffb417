package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	PINHashCost  = 12 // bcrypt work factor for generated PIN hashes
	MinPINLength = 4
	MaxPINLength = 6
)

var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

// ErrInvalidPINFormat is returned when a PIN is not 4-6 ASCII digits
var ErrInvalidPINFormat = errors.New("PIN must be 4-6 digits")

// IsValidPINFormat reports whether pin is 4 to 6 ASCII digits
func IsValidPINFormat(pin string) bool {
	return pinPattern.MatchString(pin)
}

// HashPIN hashes a PIN with bcrypt. The PIN shape is enforced first so that
// a hash that can never verify is never produced.
func HashPIN(pin string) (string, error) {
	return HashPINWithCost(pin, PINHashCost)
}

// HashPINWithCost is HashPIN with an explicit bcrypt cost (tests use bcrypt.MinCost)
func HashPINWithCost(pin string, cost int) (string, error) {
	if !IsValidPINFormat(pin) {
		return "", ErrInvalidPINFormat
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hashed), nil
}

// ComparePIN compares a candidate PIN against a bcrypt hash
func ComparePIN(hashedPIN, pin string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPIN), []byte(pin))
}

// ValidatePINHash checks that a configured value looks like a bcrypt hash.
// bcrypt.Cost parses the prefix and cost without running the expensive comparison.
func ValidatePINHash(hash string) error {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return errors.New("PIN hash is empty")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("PIN hash is not a bcrypt hash: %w", err)
	}
	return nil
}
