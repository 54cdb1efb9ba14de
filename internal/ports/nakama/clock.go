package nakama

import (
	"time"

	"bigtwo/internal/ports"
)

// SystemClock reads the host wall clock. The runtime node is the time
// authority for every stored timestamp.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

var _ ports.Clock = SystemClock{}
