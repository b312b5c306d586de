// Package id generates opaque identifiers for archived matches.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a random version-4 UUID encoded as 26 lowercase base32 characters.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}

// Parse decodes an identifier produced by NewID back into its UUID.
func Parse(id string) (uuid.UUID, error) {
	raw, err := encoding.DecodeString(strings.ToUpper(strings.TrimSpace(id)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode id: %w", err)
	}
	value, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode id: %w", err)
	}
	return value, nil
}
