// Package id generates opaque identifiers for stored records.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a random (version 4) UUID in canonical lowercase form.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return value.String(), nil
}
