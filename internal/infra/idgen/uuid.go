package idgen

import (
	"tasc/internal/ports"

	"github.com/google/uuid"
)

var _ ports.IDGenerator = UUID{}

// UUID generates random (version 4) UUIDs.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}
