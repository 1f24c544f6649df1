package channel

import (
	"sync"
)

// defaultDedupCapacity bounds the recency set of seen message ids.
const defaultDedupCapacity = 1000

// Deduper tracks recently seen provider message ids. The messaging platforms
// deliver at-least-once, so a bounded recency set filters the retries.
type Deduper struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	cap   int
}

// NewDeduper creates a deduper with the given capacity (0 for the default).
func NewDeduper(capacity int) *Deduper {
	if capacity <= 0 {
		capacity = defaultDedupCapacity
	}
	return &Deduper{
		seen: make(map[string]struct{}, capacity),
		cap:  capacity,
	}
}

// Seen records the id and reports whether it was already present. On
// overflow the oldest id is evicted.
func (d *Deduper) Seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	d.seen[id] = struct{}{}
	d.order = append(d.order, id)

	if len(d.order) > d.cap {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
	return false
}
