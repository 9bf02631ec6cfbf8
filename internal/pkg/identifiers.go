package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	joinCodeMin = 100000
	joinCodeMax = 999999
)

// GenerateSessionID - generates a unique identifier for a session.
func GenerateSessionID() string {
	return uuid.NewString()
}

// GenerateJoinCode - draws a 6-digit numeric code uniformly at random.
// Uniqueness among joinable sessions is the directory's job, not this
// function's.
func GenerateJoinCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(joinCodeMax-joinCodeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to draw join code: %w", err)
	}

	return fmt.Sprintf("%d", joinCodeMin+n.Int64()), nil
}
