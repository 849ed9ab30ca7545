package payment

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator must produce collision-free identifiers for the lifetime of
// the process.
type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

type UTCClock struct{}

func (UTCClock) Now() time.Time {
	return time.Now().UTC()
}
