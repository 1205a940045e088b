package scrapeapp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gosom/scrapemate"
	"github.com/stretchr/testify/require"
)

func Test_FIFOProvider_DeliversInPushOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := newFIFOProvider()

	const total = 80

	for i := 0; i < total; i++ {
		require.NoError(t, p.Push(ctx, &scrapemate.Job{ID: fmt.Sprintf("%03d", i)}))
	}

	jobs, _ := p.Jobs(ctx)

	for i := 0; i < total; i++ {
		select {
		case job := <-jobs:
			require.Equal(t, fmt.Sprintf("%03d", i), job.GetID())
		case <-time.After(5 * time.Second):
			t.Fatalf("job %d never arrived", i)
		}
	}
}

func Test_FIFOProvider_DeliversLatePushes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := newFIFOProvider()

	jobs, _ := p.Jobs(ctx)

	require.NoError(t, p.Push(ctx, &scrapemate.Job{ID: "first"}))

	select {
	case job := <-jobs:
		require.Equal(t, "first", job.GetID())
	case <-time.After(5 * time.Second):
		t.Fatal("first job never arrived")
	}

	require.NoError(t, p.Push(ctx, &scrapemate.Job{ID: "second"}))

	select {
	case job := <-jobs:
		require.Equal(t, "second", job.GetID())
	case <-time.After(5 * time.Second):
		t.Fatal("second job never arrived")
	}
}

func Test_FIFOProvider_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := newFIFOProvider()
	jobs, _ := p.Jobs(ctx)

	cancel()

	// let the drain loop observe the cancellation before pushing
	time.Sleep(2 * queuePollInterval)

	require.NoError(t, p.Push(context.Background(), &scrapemate.Job{ID: "late"}))

	select {
	case job := <-jobs:
		t.Fatalf("job %s delivered after cancel", job.GetID())
	case <-time.After(3 * queuePollInterval):
	}
}
