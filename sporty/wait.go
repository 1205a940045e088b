package sporty

import (
	"context"
	"time"
)

// Stage names a pause point in the navigation flow.
type Stage string

const (
	StageInitialLoad   Stage = "initial_load"
	StageFilterApplied Stage = "filter_applied"
	StageListingReload Stage = "listing_reload"
	StageCardOpened    Stage = "card_opened"
	StageRedirector    Stage = "redirector"
	StageTabSwitch     Stage = "tab_switch"
	StagePreExtract    Stage = "pre_extract"
)

// Settler controls how long navigation is given to settle after each stage.
// The site renders client side with no reliable load events, so the default
// policy is a fixed sleep per stage.
type Settler interface {
	Settle(ctx context.Context, stage Stage)
}

var stageDelays = map[Stage]time.Duration{
	StageInitialLoad:   5 * time.Second,
	StageFilterApplied: 3 * time.Second,
	StageListingReload: 3 * time.Second,
	StageCardOpened:    4 * time.Second,
	StageRedirector:    4 * time.Second,
	StageTabSwitch:     3 * time.Second,
	StagePreExtract:    2 * time.Second,
}

var defaultSettler Settler = FixedSettler{}

// FixedSettler sleeps a fixed duration per stage, honoring cancellation.
type FixedSettler struct{}

func (FixedSettler) Settle(ctx context.Context, stage Stage) {
	ctxWait(ctx, stageDelays[stage])
}

// InstantSettler never waits. Useful when driving the jobs in tests.
type InstantSettler struct{}

func (InstantSettler) Settle(context.Context, Stage) {}

func ctxWait(ctx context.Context, dur time.Duration) {
	if dur <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(dur):
	}
}
