// Package idgen generates the identifiers the processor attaches to events
// and candidates: a monotonic, per-processor block id and a globally unique
// event id.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// BlockIDs renders monotonically increasing block identifiers as short
// opaque strings (b_000001, b_000002, ...), matching the block_id policy
// in the spec: stable across every event for a candidate's lifetime, never
// reused by the same generator. Ids are unique per generator only: every
// new BlockIDs starts again at b_000001.
type BlockIDs struct {
	counter uint64
}

// Next returns the next block id for this generator.
func (g *BlockIDs) Next() string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("b_%06d", n)
}

// EventID returns a fresh globally unique event identifier. Event ids need
// only be unique, not ordered, so they are backed directly by a random
// UUID rather than a counter.
func EventID() string {
	return uuid.NewString()
}
