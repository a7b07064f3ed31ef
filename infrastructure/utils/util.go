package utils

import (
	"time"

	"github.com/google/uuid"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// NewID returns the identifier used for actions, temporary contents and
// outbox events.
func NewID() string {
	return uuid.NewString()
}
