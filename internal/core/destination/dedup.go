package destination

import (
	"sync"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

// Deduplicator remembers which (source, destination) pairs were placed during
// the current run. Safe for concurrent use.
type Deduplicator struct {
	mu   sync.Mutex
	seen map[domain.PlacementKey]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[domain.PlacementKey]struct{})}
}

// ShouldPlace reports true the first time key is observed and false after.
func (d *Deduplicator) ShouldPlace(key domain.PlacementKey) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Forget releases key so a later request can place it again. Callers use it
// when the copy for a claimed key failed.
func (d *Deduplicator) Forget(key domain.PlacementKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
