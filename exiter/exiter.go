package exiter

import (
	"context"
	"sync"
	"time"
)

// Exiter watches run progress and cancels the run context once the listing
// seed has completed and every discovered match has been processed. A run
// that discovers zero matches completes as soon as the seed does.
type Exiter interface {
	SetSeedCount(int)
	SetCancelFunc(context.CancelFunc)
	IncrSeedCompleted(int)
	IncrMatchesFound(int)
	IncrMatchesCompleted(int)
	IncrRecordsWritten(int)
	GetMatchProgress() (completed int, found int)
	GetRecordsWritten() int
	Run(context.Context)
}

type exiter struct {
	seedCount        int
	seedCompleted    int
	matchesFound     int
	matchesCompleted int
	recordsWritten   int

	mu         *sync.Mutex
	cancelFunc context.CancelFunc
}

func New() Exiter {
	return &exiter{
		mu: &sync.Mutex{},
	}
}

func (e *exiter) SetSeedCount(val int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seedCount = val
}

func (e *exiter) SetCancelFunc(fn context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelFunc = fn
}

func (e *exiter) IncrSeedCompleted(val int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seedCompleted += val
}

func (e *exiter) IncrMatchesFound(val int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.matchesFound += val
}

func (e *exiter) IncrMatchesCompleted(val int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.matchesCompleted += val
}

func (e *exiter) IncrRecordsWritten(val int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.recordsWritten += val
}

func (e *exiter) GetMatchProgress() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.matchesCompleted, e.matchesFound
}

func (e *exiter) GetRecordsWritten() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.recordsWritten
}

func (e *exiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.isDone() {
				e.mu.Lock()
				cancel := e.cancelFunc
				e.mu.Unlock()

				if cancel != nil {
					cancel()
				}

				return
			}
		}
	}
}

func (e *exiter) isDone() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seedCompleted < e.seedCount {
		return false
	}

	return e.matchesCompleted >= e.matchesFound
}
