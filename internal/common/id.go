package common

import (
	"github.com/google/uuid"
)

// NewInvocationID generates a correlation ID for one tool invocation
// Format: call_<uuid>
func NewInvocationID() string {
	return "call_" + uuid.New().String()
}
