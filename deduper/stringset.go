package deduper

import (
	"context"
	"sync"
)

var _ Deduper = (*stringset)(nil)

type stringset struct {
	mux  *sync.RWMutex
	seen map[string]struct{}
}

func (d *stringset) AddIfNotExists(_ context.Context, key string) bool {
	d.mux.RLock()
	if _, ok := d.seen[key]; ok {
		d.mux.RUnlock()
		return false
	}

	d.mux.RUnlock()

	d.mux.Lock()
	defer d.mux.Unlock()

	if _, ok := d.seen[key]; ok {
		return false
	}

	d.seen[key] = struct{}{}

	return true
}
