package scrapeapp

import (
	"context"
	"sync"
	"time"

	"github.com/gosom/scrapemate"
)

// queuePollInterval is how often the drain loop re-checks an empty queue.
const queuePollInterval = 100 * time.Millisecond

var _ scrapemate.JobProvider = (*fifoProvider)(nil)

// fifoProvider hands out jobs strictly in the order they were pushed. The
// listing discovers matches top to bottom, so push order is scrape order
// and the results file follows the page.
type fifoProvider struct {
	mu      *sync.Mutex
	queue   []scrapemate.IJob
	jobc    chan scrapemate.IJob
	started bool
}

func newFIFOProvider() scrapemate.JobProvider {
	prov := fifoProvider{
		mu:   &sync.Mutex{},
		jobc: make(chan scrapemate.IJob, 100),
	}

	return &prov
}

//nolint:gocritic // it contains about unnamed results
func (p *fifoProvider) Jobs(ctx context.Context) (<-chan scrapemate.IJob, <-chan error) {
	outc := make(chan scrapemate.IJob)
	errc := make(chan error, 1)

	p.mu.Lock()
	if !p.started {
		go p.drainQueue(ctx)

		p.started = true
	}
	p.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-p.jobc:
				if !ok {
					return
				}

				select {
				case outc <- job:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return outc, errc
}

// Push appends a job to the queue. It never blocks, so jobs can push
// their follow-up jobs from the same goroutine that consumes Jobs.
func (p *fifoProvider) Push(_ context.Context, job scrapemate.IJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue = append(p.queue, job)

	return nil
}

func (p *fifoProvider) drainQueue(ctx context.Context) {
	defer close(p.jobc)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch := p.takeBatch()

		if len(batch) == 0 {
			select {
			case <-time.After(queuePollInterval):
			case <-ctx.Done():
				return
			}

			continue
		}

		for _, job := range batch {
			select {
			case p.jobc <- job:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *fifoProvider) takeBatch() []scrapemate.IJob {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return nil
	}

	batch := p.queue
	p.queue = nil

	return batch
}
