package deduper

import (
	"context"
	"sync"
)

// Deduper records strings it has already seen. Keys are compared exactly,
// byte for byte. No normalization is applied.
type Deduper interface {
	AddIfNotExists(context.Context, string) bool
}

func New() Deduper {
	return &stringset{
		seen: make(map[string]struct{}),
		mux:  &sync.RWMutex{},
	}
}
