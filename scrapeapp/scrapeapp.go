// Package scrapeapp assembles the scrapemate pipeline for one scrape run:
// an in-memory FIFO job provider, the single-session Playwright fetcher,
// a goquery HTML parser, and the configured result writers. Concurrency is
// pinned to one so matches execute strictly in discovery order on the one
// browser session.
package scrapeapp

import (
	"context"
	"errors"
	"time"

	"github.com/gosom/scrapemate"
	parser "github.com/gosom/scrapemate/adapters/parsers/goqueryparser"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/streamgrab/sporty100-scraper/fetchers"
)

// matches run one at a time on the shared browser session
const concurrency = 1

type Config struct {
	// Writers consume every result the jobs produce. At least one.
	Writers []scrapemate.ResultWriter

	// Headful shows the browser window. Headless by default.
	Headful bool

	// ExitOnInactivity stops a wedged run after this much time without
	// progress. Zero disables the watchdog.
	ExitOnInactivity time.Duration

	// Logger is used for session lifecycle messages. Optional.
	Logger *zap.Logger
}

func (c *Config) validate() error {
	var err error

	if len(c.Writers) == 0 {
		err = multierr.Append(err, errors.New("at least one result writer is required"))
	}

	if c.ExitOnInactivity < 0 {
		err = multierr.Append(err, errors.New("exit on inactivity duration cannot be negative"))
	}

	return err
}

type App struct {
	cfg *Config

	cancel context.CancelCauseFunc

	provider scrapemate.JobProvider
	fetcher  *fetchers.PlaywrightFetcher
}

func New(cfg *Config) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	app := App{
		cfg: cfg,
	}

	return &app, nil
}

// Start runs the pipeline until every pushed job has completed, the
// context is cancelled, or the inactivity watchdog fires.
func (app *App) Start(ctx context.Context, seedJobs ...scrapemate.IJob) error {
	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancelCause(ctx)

	defer cancel(errors.New("closing app"))

	app.cancel = cancel

	mate, err := app.getMate(ctx)
	if err != nil {
		return err
	}

	defer app.Close()

	for i := range app.cfg.Writers {
		writer := app.cfg.Writers[i]

		g.Go(func() error {
			if err := writer.Run(ctx, mate.Results()); err != nil {
				cancel(err)

				return err
			}

			return nil
		})
	}

	g.Go(func() error {
		return mate.Start()
	})

	g.Go(func() error {
		for i := range seedJobs {
			if err := app.provider.Push(ctx, seedJobs[i]); err != nil {
				return err
			}
		}

		return nil
	})

	return g.Wait()
}

// Close releases the browser session. Idempotent.
func (app *App) Close() error {
	if app.fetcher == nil {
		return nil
	}

	return app.fetcher.Close()
}

func (app *App) getMate(ctx context.Context) (*scrapemate.ScrapeMate, error) {
	app.provider = newFIFOProvider()

	fetcher, err := fetchers.New(!app.cfg.Headful, app.cfg.Logger)
	if err != nil {
		return nil, err
	}

	app.fetcher = fetcher

	params := []func(*scrapemate.ScrapeMate) error{
		scrapemate.WithContext(ctx, app.cancel),
		scrapemate.WithJobProvider(app.provider),
		scrapemate.WithHTTPFetcher(fetcher),
		scrapemate.WithHTMLParser(parser.New()),
		scrapemate.WithConcurrency(concurrency),
	}

	if app.cfg.ExitOnInactivity > 0 {
		params = append(params, scrapemate.WithExitBecauseOfInactivity(app.cfg.ExitOnInactivity))
	}

	return scrapemate.New(params...)
}
