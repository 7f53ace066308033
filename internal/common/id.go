package common

import (
	"github.com/google/uuid"
)

// NewTurnID generates a unique per-request turn ID with the "turn_" prefix.
// Format: turn_<uuid>
func NewTurnID() string {
	return "turn_" + uuid.New().String()
}
