package util

import "github.com/google/uuid"

// NewID returns a random UUID string used as record and request identifier.
func NewID() string {
	return uuid.NewString()
}
