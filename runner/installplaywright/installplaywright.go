package installplaywright

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/streamgrab/sporty100-scraper/runner"
)

// installer downloads the chromium build playwright drives. Running it once
// ahead of time keeps the first scrape from paying the download cost.
type installer struct {
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeInstallPlaywright {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	return &installer{}, nil
}

func (i *installer) Run(context.Context) error {
	opts := []*playwright.RunOptions{
		{
			Browsers: []string{"chromium"},
		},
	}

	return playwright.Install(opts...)
}

func (i *installer) Close(context.Context) error {
	return nil
}
