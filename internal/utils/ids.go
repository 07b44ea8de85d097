package utils

import (
	"github.com/google/uuid"
)

// NewID creates a new random UUID string for entity identification
func NewID() string {
	return uuid.New().String()
}

// IsValidID reports whether id is a canonical UUID string
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
