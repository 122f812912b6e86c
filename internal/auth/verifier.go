// Package auth verifies staff and student credentials.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier hashes passwords and checks a password against a stored hash.
type Verifier interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type BcryptVerifier struct {
	cost int
}

func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{cost: cost}
}

func (v *BcryptVerifier) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (v *BcryptVerifier) Compare(hash, password string) error {
	if hash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// CheckInstructor verifies a staff password.
func CheckInstructor(v Verifier, i models.Instructor, password string) error {
	return v.Compare(i.PasswordHash, password)
}

// CheckStudent verifies a student password against whichever credential is
// authoritative: the permanent hash once the student changed it, the
// temporary code before that.
func CheckStudent(v Verifier, s models.Student, password string) error {
	if s.PasswordChanged {
		return v.Compare(s.PasswordHash, password)
	}
	if s.TemporaryPassword == "" {
		return ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(s.TemporaryPassword), []byte(password)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
