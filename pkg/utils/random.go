package utils

import (
	"github.com/google/uuid"
)

// GenerateIdentifier returns the system identifier for a new code.
func GenerateIdentifier() string {
	return uuid.NewString()
}
