package exiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/streamgrab/sporty100-scraper/exiter"
)

func runUntilCancelled(t *testing.T, e exiter.Exiter) bool {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelled := make(chan struct{})
	e.SetCancelFunc(func() {
		close(cancelled)
		cancel()
	})

	go e.Run(ctx)

	select {
	case <-cancelled:
		return true
	case <-time.After(3 * time.Second):
		return false
	}
}

func Test_Exiter_AllMatchesCompleted(t *testing.T) {
	e := exiter.New()
	e.SetSeedCount(1)
	e.IncrSeedCompleted(1)
	e.IncrMatchesFound(3)
	e.IncrMatchesCompleted(3)

	require.True(t, runUntilCancelled(t, e))
}

func Test_Exiter_ZeroMatches(t *testing.T) {
	e := exiter.New()
	e.SetSeedCount(1)
	e.IncrSeedCompleted(1)

	require.True(t, runUntilCancelled(t, e))
}

func Test_Exiter_WaitsForSeed(t *testing.T) {
	e := exiter.New()
	e.SetSeedCount(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelled := make(chan struct{})
	e.SetCancelFunc(func() { close(cancelled) })

	go e.Run(ctx)

	select {
	case <-cancelled:
		t.Fatal("exited before the seed completed")
	case <-time.After(1500 * time.Millisecond):
	}
}

func Test_Exiter_CountsSkippedMatches(t *testing.T) {
	e := exiter.New()
	e.SetSeedCount(1)
	e.IncrSeedCompleted(1)
	e.IncrMatchesFound(2)

	// one record written, one match skipped: both count as completed
	e.IncrMatchesCompleted(1)
	e.IncrRecordsWritten(1)
	e.IncrMatchesCompleted(1)

	require.True(t, runUntilCancelled(t, e))

	completed, found := e.GetMatchProgress()
	require.Equal(t, 2, completed)
	require.Equal(t, 2, found)
	require.Equal(t, 1, e.GetRecordsWritten())
}
