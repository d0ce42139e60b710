// Package identifier generates todo IDs.
package identifier

import "github.com/google/uuid"

// Generator - produces a new unique ID on each call
type Generator interface {
	New() string
}

// UUIDGenerator - random (v4) UUIDs, 122 random bits. IDs are not checked
// against existing records.
type UUIDGenerator struct{}

// New - returns a new UUID string
func (UUIDGenerator) New() string {
	return uuid.New().String()
}

// Static - always returns the same ID, useful in tests
type Static string

// New - returns s
func (s Static) New() string {
	return string(s)
}
