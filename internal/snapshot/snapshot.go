// Package snapshot holds the currently active policy set behind an atomic
// pointer. A reload builds a complete new snapshot and swaps it in wholesale;
// readers never observe a partially updated policy.
package snapshot

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/dstepanov/hwpolicy/internal/policy"
)

// Snapshot is one immutable generation of the active policy.
type Snapshot struct {
	Set      *policy.Set
	Raw      []byte
	ETag     string
	LoadedAt time.Time
}

var current atomic.Pointer[Snapshot]

// New wraps a freshly built set with its raw document and a content ETag.
func New(set *policy.Set, raw []byte) *Snapshot {
	return &Snapshot{
		Set:      set,
		Raw:      raw,
		ETag:     etagFor(raw),
		LoadedAt: time.Now().UTC(),
	}
}

func etagFor(raw []byte) string {
	return fmt.Sprintf(`W/"%016x"`, xxhash.Sum64(raw))
}

// Load returns the active snapshot, or nil when no policy has been applied
// yet.
func Load() *Snapshot {
	return current.Load()
}

// Update swaps in a new snapshot and notifies subscribers.
func Update(s *Snapshot) {
	current.Store(s)
	publishUpdate(s.ETag)
}

// Reset drops the active snapshot. Test helper.
func Reset() {
	current.Store(nil)
}
