package util

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string.
// ulid.Make draws from a process-wide monotonic entropy source that is safe
// for concurrent use, so parallel imports never collide.
func NewULID() string {
	return ulid.Make().String()
}

// NewUUID generates a new random (version 4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// IDGenerator returns the identifier source registered under name.
// Supported names are "ulid" (the default when name is empty) and "uuid".
func IDGenerator(name string) (func() string, error) {
	switch name {
	case "", "ulid":
		return NewULID, nil
	case "uuid":
		return NewUUID, nil
	default:
		return nil, fmt.Errorf("unsupported id generator: %s", name)
	}
}
