package server

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// CallIDSource produces the id attached to each Invocation. It is
// injected into the Server rather than living in package-level state,
// so id semantics (monotonic vs random) are an explicit, testable
// choice.
type CallIDSource interface {
	NextID() string
}

// Sequence is a monotonically increasing counter. Safe for concurrent
// use; ids are unique within one server instance.
type Sequence struct {
	n atomic.Int64
}

// NewSequence returns a counter starting at 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) NextID() string {
	return strconv.FormatInt(s.n.Add(1), 10)
}

// UUIDSource produces random UUIDs, for deployments that correlate call
// ids across multiple server processes.
type UUIDSource struct{}

func (UUIDSource) NextID() string {
	return uuid.NewString()
}
