package fetchers

import (
	"context"
	"fmt"

	"github.com/gosom/scrapemate"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var _ scrapemate.HTTPFetcher = (*PlaywrightFetcher)(nil)

// PlaywrightFetcher runs jobs against a single long-lived Chromium session.
// The browser is launched eagerly so a machine without a usable browser
// fails the run up front instead of failing every job.
type PlaywrightFetcher struct {
	headless bool
	pool     chan *browser
}

// New provisions Playwright and launches the session. A failed driver
// install is only a warning: whatever driver and browser are already on the
// machine may still work. A failed launch is fatal.
func New(headless bool, lgr *zap.Logger) (*PlaywrightFetcher, error) {
	if lgr == nil {
		lgr = zap.NewNop()
	}

	if err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	}); err != nil {
		lgr.Warn("playwright install failed, falling back to existing browsers", zap.Error(err))
	}

	const poolSize = 1

	ans := PlaywrightFetcher{
		headless: headless,
		pool:     make(chan *browser, poolSize),
	}

	b, err := newBrowser(headless)
	if err != nil {
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	ans.pool <- b

	return &ans, nil
}

func (o *PlaywrightFetcher) GetBrowser(ctx context.Context) (*browser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ans := <-o.pool:
		return ans, nil
	default:
		return newBrowser(o.headless)
	}
}

func (o *PlaywrightFetcher) PutBrowser(ctx context.Context, b *browser) {
	select {
	case <-ctx.Done():
		_ = b.Close()
	case o.pool <- b:
	default:
		_ = b.Close()
	}
}

// Fetch hands the job the session's page. The first page is reused across
// jobs so the session keeps its cookies and storage; stray tabs left behind
// by a previous job are closed first.
func (o *PlaywrightFetcher) Fetch(ctx context.Context, job scrapemate.IJob) scrapemate.Response {
	browser, err := o.GetBrowser(ctx)
	if err != nil {
		return scrapemate.Response{
			Error: err,
		}
	}

	defer o.PutBrowser(ctx, browser)

	if job.GetTimeout() > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, job.GetTimeout())

		defer cancel()
	}

	var page playwright.Page

	if pages := browser.ctx.Pages(); len(pages) > 0 {
		page = pages[0]

		for i := 1; i < len(pages); i++ {
			_ = pages[i].Close()
		}
	} else {
		page, err = browser.ctx.NewPage()
		if err != nil {
			return scrapemate.Response{
				Error: err,
			}
		}
	}

	return job.BrowserActions(ctx, page)
}

// Close releases the session exactly once. Safe to call on every exit path.
func (o *PlaywrightFetcher) Close() error {
	var err error

	for {
		select {
		case b := <-o.pool:
			err = multierr.Append(err, b.Close())
		default:
			return err
		}
	}
}

type browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
}

func (o *browser) Close() error {
	return multierr.Combine(
		o.ctx.Close(),
		o.browser.Close(),
		o.pw.Stop(),
	)
}

func newBrowser(headless bool) (*browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			`--no-sandbox`,
			`--disable-dev-shm-usage`,
			`--disable-gpu`,
			`--window-size=1920,1080`,
		},
	}

	br, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()

		return nil, err
	}

	const defaultWidth, defaultHeight = 1920, 1080

	bctx, err := br.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  defaultWidth,
			Height: defaultHeight,
		},
	})
	if err != nil {
		_ = br.Close()
		_ = pw.Stop()

		return nil, err
	}

	ans := browser{
		pw:      pw,
		browser: br,
		ctx:     bctx,
	}

	return &ans, nil
}
