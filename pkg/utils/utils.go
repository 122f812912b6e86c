package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// TemporaryPassword returns a one-time student code such as MJA-4821.
func TemporaryPassword() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate temporary password: %w", err)
	}
	return fmt.Sprintf("MJA-%04d", 1000+n.Int64()), nil
}
