package scraperunner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gosom/scrapemate"
	"go.uber.org/zap"

	"github.com/streamgrab/sporty100-scraper/deduper"
	"github.com/streamgrab/sporty100-scraper/exiter"
	"github.com/streamgrab/sporty100-scraper/runner"
	"github.com/streamgrab/sporty100-scraper/scrapeapp"
	"github.com/streamgrab/sporty100-scraper/sporty"
	"github.com/streamgrab/sporty100-scraper/tlmt"
)

type scrapeRunner struct {
	cfg         *runner.Config
	lgr         *zap.Logger
	app         *scrapeapp.App
	writer      *resultWriter
	exitMonitor exiter.Exiter
	outfile     string
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeScrape {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	lgr := runner.NewLogger()
	exitMonitor := exiter.New()
	outfile := resultsFileName(time.Now())

	ans := &scrapeRunner{
		cfg:         cfg,
		lgr:         lgr,
		exitMonitor: exitMonitor,
		outfile:     outfile,
		writer:      newResultWriter(outfile, lgr, exitMonitor),
	}

	app, err := scrapeapp.New(&scrapeapp.Config{
		Writers:          []scrapemate.ResultWriter{ans.writer},
		Headful:          cfg.Visible,
		ExitOnInactivity: cfg.ExitOnInactivityDuration,
		Logger:           lgr,
	})
	if err != nil {
		return nil, err
	}

	ans.app = app

	return ans, nil
}

func (r *scrapeRunner) Run(ctx context.Context) (err error) {
	t0 := time.Now().UTC()

	defer func() {
		elapsed := time.Now().UTC().Sub(t0)

		completed, found := r.exitMonitor.GetMatchProgress()
		params := map[string]any{
			"matches_found":     found,
			"matches_completed": completed,
			"records_written":   r.exitMonitor.GetRecordsWritten(),
			"duration":          elapsed.String(),
		}

		if err != nil {
			params["error"] = err.Error()
		}

		evt := tlmt.NewEvent("scrape_run", params)

		_ = runner.Telemetry().Send(ctx, evt)
	}()

	extractor := sporty.NewLinkExtractor(
		sporty.WithDebugSnapshot(sporty.RedirectorDebugFile),
	)

	seed := sporty.NewListingJob(
		sporty.WithListingJobDeduper(deduper.New()),
		sporty.WithListingJobExitMonitor(r.exitMonitor),
		sporty.WithListingJobExtractor(extractor),
	)

	r.exitMonitor.SetSeedCount(1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.exitMonitor.SetCancelFunc(cancel)

	go r.exitMonitor.Run(ctx)

	r.lgr.Info("starting scrape",
		zap.String("results_file", r.outfile),
		zap.Bool("headless", !r.cfg.Visible),
	)

	err = r.app.Start(ctx, seed)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	err = nil

	writeSummary(os.Stdout, r.writer.Records(), r.outfile)

	return nil
}

func (r *scrapeRunner) Close(context.Context) error {
	defer func() {
		_ = r.lgr.Sync()
	}()

	if r.app != nil {
		return r.app.Close()
	}

	return nil
}

func resultsFileName(t time.Time) string {
	return fmt.Sprintf("sporty100_streams_%s.json", t.Format("20060102_150405"))
}
