package deduper_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamgrab/sporty100-scraper/deduper"
)

func Test_AddIfNotExists(t *testing.T) {
	d := deduper.New()
	ctx := context.Background()

	require.True(t, d.AddIfNotExists(ctx, "Arsenal vs Chelsea"))
	require.False(t, d.AddIfNotExists(ctx, "Arsenal vs Chelsea"))
	require.True(t, d.AddIfNotExists(ctx, "Real Madrid vs Barcelona"))
}

func Test_AddIfNotExists_ExactMatch(t *testing.T) {
	d := deduper.New()
	ctx := context.Background()

	tests := []struct {
		name string
		a    string
		b    string
	}{
		{name: "trailing slash", a: "https://scdn.monster/embed", b: "https://scdn.monster/embed/"},
		{name: "case", a: "live", b: "Live"},
		{name: "whitespace", a: "Team A vs Team B", b: "Team A vs Team B "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, d.AddIfNotExists(ctx, tt.a))
			require.True(t, d.AddIfNotExists(ctx, tt.b))
		})
	}
}

func Test_AddIfNotExists_Concurrent(t *testing.T) {
	d := deduper.New()
	ctx := context.Background()

	const workers = 16

	var (
		wg   sync.WaitGroup
		mux  sync.Mutex
		wins int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if d.AddIfNotExists(ctx, "same key") {
				mux.Lock()
				wins++
				mux.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Equal(t, 1, wins)
}
