package snapshot

import "sync"

// Update events carry the ETag of the snapshot that just became active.
// Subscribers with a full channel miss events rather than block the swap.

var (
	subMu sync.Mutex
	subs  = make(map[chan string]struct{})
)

// Subscribe registers for snapshot-change notifications. The returned cancel
// function must be called to release the subscription.
func Subscribe() (<-chan string, func()) {
	ch := make(chan string, 8)
	subMu.Lock()
	subs[ch] = struct{}{}
	subMu.Unlock()

	cancel := func() {
		subMu.Lock()
		delete(subs, ch)
		subMu.Unlock()
	}
	return ch, cancel
}

func publishUpdate(etag string) {
	subMu.Lock()
	defer subMu.Unlock()
	for ch := range subs {
		select {
		case ch <- etag:
		default:
		}
	}
}
