package sporty

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/gosom/scrapemate"
	"github.com/playwright-community/playwright-go"

	"github.com/streamgrab/sporty100-scraper/deduper"
	"github.com/streamgrab/sporty100-scraper/exiter"
)

// BaseURL is the live match listing.
const BaseURL = "https://sporty100.com/"

// ListingDebugFile receives the listing markup when no match cards are
// found, so selector drift can be diagnosed after the fact.
const ListingDebugFile = "sporty100_debug.html"

const (
	matchCardSelector = `div[role="button"][aria-label^="View details for match:"]`
	matchLabelPrefix  = "View details for match:"
)

// liveFilterTexts are the accepted labels of the Live tab, lowercase.
var liveFilterTexts = []string{"live", "live now"}

type ListingJobOptions func(*ListingJob)

// ListingJob is the run's single seed. It opens the listing, applies the
// Live filter, collects every match name up front, and fans out one
// MatchJob per unique name. It never produces a result itself.
type ListingJob struct {
	scrapemate.Job

	Deduper     deduper.Deduper
	ExitMonitor exiter.Exiter
	Settler     Settler
	Extractor   *LinkExtractor
}

func NewListingJob(opts ...ListingJobOptions) *ListingJob {
	job := ListingJob{
		Job: scrapemate.Job{
			ID:       uuid.New().String(),
			Method:   http.MethodGet,
			URL:      BaseURL,
			Priority: scrapemate.PriorityMedium,
		},
	}

	for _, opt := range opts {
		opt(&job)
	}

	return &job
}

func WithListingJobDeduper(d deduper.Deduper) ListingJobOptions {
	return func(j *ListingJob) {
		j.Deduper = d
	}
}

func WithListingJobExitMonitor(e exiter.Exiter) ListingJobOptions {
	return func(j *ListingJob) {
		j.ExitMonitor = e
	}
}

func WithListingJobSettler(s Settler) ListingJobOptions {
	return func(j *ListingJob) {
		j.Settler = s
	}
}

func WithListingJobExtractor(ex *LinkExtractor) ListingJobOptions {
	return func(j *ListingJob) {
		j.Extractor = ex
	}
}

func (j *ListingJob) UseInResults() bool {
	return false
}

func (j *ListingJob) ProcessOnFetchError() bool {
	return true
}

func (j *ListingJob) BrowserActions(ctx context.Context, page playwright.Page) scrapemate.Response {
	var resp scrapemate.Response

	log := scrapemate.GetLoggerFromContext(ctx)
	log.Info("opening match listing", "url", j.GetURL())

	pageResponse, err := page.Goto(j.GetURL(), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		resp.Error = err

		return resp
	}

	j.settler().Settle(ctx, StageInitialLoad)

	if applyLiveFilter(page) {
		j.settler().Settle(ctx, StageFilterApplied)
	} else {
		log.Warn("live filter control not found, scraping the unfiltered listing")
	}

	// a nil page response still leaves the rendered listing in place, so
	// collection proceeds either way
	recordNavigation(&resp, pageResponse, page.URL())

	names, err := collectMatchNames(page)
	if err != nil {
		resp.Error = err

		return resp
	}

	body, err := page.Content()
	if err != nil {
		resp.Error = err

		return resp
	}

	resp.Body = []byte(body)
	resp.Meta = map[string]any{
		"home_url":    page.URL(),
		"match_names": names,
	}

	return resp
}

func (j *ListingJob) Process(ctx context.Context, resp *scrapemate.Response) (any, []scrapemate.IJob, error) {
	defer func() {
		resp.Document = nil
		resp.Body = nil
		resp.Meta = nil
	}()

	log := scrapemate.GetLoggerFromContext(ctx)

	if resp.Error != nil {
		if j.ExitMonitor != nil {
			j.ExitMonitor.IncrSeedCompleted(1)
		}

		return nil, nil, fmt.Errorf("listing navigation failed: %w", resp.Error)
	}

	names, _ := resp.Meta["match_names"].([]string)
	homeURL, _ := resp.Meta["home_url"].(string)

	if len(names) == 0 {
		log.Warn("no match cards found, saving listing snapshot", "file", ListingDebugFile)

		if err := os.WriteFile(ListingDebugFile, resp.Body, 0o644); err != nil {
			log.Error("failed to save listing snapshot", "error", err.Error())
		}

		if j.ExitMonitor != nil {
			j.ExitMonitor.IncrSeedCompleted(1)
		}

		return nil, nil, nil
	}

	log.Info("collected match cards", "count", len(names))

	var next []scrapemate.IJob

	for _, name := range names {
		if j.Deduper != nil && !j.Deduper.AddIfNotExists(ctx, name) {
			continue
		}

		next = append(next, NewMatchJob(j.ID, name, homeURL,
			WithMatchJobExitMonitor(j.ExitMonitor),
			WithMatchJobSettler(j.Settler),
			WithMatchJobExtractor(j.Extractor),
		))
	}

	// found must be visible to the exit monitor before the seed counts as
	// complete, otherwise it can fire between the two increments
	if j.ExitMonitor != nil {
		j.ExitMonitor.IncrMatchesFound(len(next))
		j.ExitMonitor.IncrSeedCompleted(1)
	}

	return nil, next, nil
}

func (j *ListingJob) settler() Settler {
	if j.Settler != nil {
		return j.Settler
	}

	return defaultSettler
}

// applyLiveFilter looks for the Live tab first among plain buttons, then
// among ARIA tab/button roles, and activates the first one it finds.
func applyLiveFilter(page playwright.Page) bool {
	selectors := []string{`button`, `[role="tab"], [role="button"]`}

	for _, sel := range selectors {
		els, err := page.Locator(sel).All()
		if err != nil {
			continue
		}

		el, ok := firstWhere(els, innerTextIsAnyFold(liveFilterTexts...))
		if !ok {
			continue
		}

		if _, err := el.Evaluate(clickScript, nil); err != nil {
			continue
		}

		return true
	}

	return false
}

func collectMatchNames(page playwright.Page) ([]string, error) {
	els, err := page.Locator(matchCardSelector).All()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate match cards: %w", err)
	}

	names := make([]string, 0, len(els))

	for _, el := range els {
		label, err := el.GetAttribute("aria-label")
		if err != nil {
			continue
		}

		name := strings.TrimSpace(strings.TrimPrefix(label, matchLabelPrefix))
		if name == "" {
			continue
		}

		names = append(names, name)
	}

	return names, nil
}
