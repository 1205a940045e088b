package sporty

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_StageDelays(t *testing.T) {
	// the site needs these pauses to render each hop
	assert.Equal(t, 5*time.Second, stageDelays[StageInitialLoad])
	assert.Equal(t, 3*time.Second, stageDelays[StageFilterApplied])
	assert.Equal(t, 3*time.Second, stageDelays[StageListingReload])
	assert.Equal(t, 4*time.Second, stageDelays[StageCardOpened])
	assert.Equal(t, 4*time.Second, stageDelays[StageRedirector])
	assert.Equal(t, 3*time.Second, stageDelays[StageTabSwitch])
	assert.Equal(t, 2*time.Second, stageDelays[StagePreExtract])
}

func Test_FixedSettler_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	FixedSettler{}.Settle(ctx, StageInitialLoad)

	require.Less(t, time.Since(start), time.Second)
}

func Test_FixedSettler_UnknownStage(t *testing.T) {
	start := time.Now()
	FixedSettler{}.Settle(context.Background(), Stage("unknown"))

	require.Less(t, time.Since(start), time.Second)
}

func Test_InstantSettler(t *testing.T) {
	start := time.Now()
	InstantSettler{}.Settle(context.Background(), StageInitialLoad)

	require.Less(t, time.Since(start), 50*time.Millisecond)
}
