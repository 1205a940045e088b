package sporty

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/gosom/scrapemate"
	"github.com/playwright-community/playwright-go"

	"github.com/streamgrab/sporty100-scraper/exiter"
)

const (
	streamlyButtonSelector = `button[data-slot="button"]`
	streamlyButtonText     = "streamly"
)

type MatchJobOptions func(*MatchJob)

// MatchJob navigates one match from the listing to its stream redirector:
// reload the listing, open the match card, follow the "Go to Streamly"
// button, then extract candidate links from wherever that lands. Any
// failure along the way skips this match only.
type MatchJob struct {
	scrapemate.Job

	MatchName   string
	ExitMonitor exiter.Exiter
	Settler     Settler
	Extractor   *LinkExtractor
}

func NewMatchJob(parentID, matchName, homeURL string, opts ...MatchJobOptions) *MatchJob {
	job := MatchJob{
		Job: scrapemate.Job{
			ID:       uuid.New().String(),
			ParentID: parentID,
			Method:   http.MethodGet,
			URL:      homeURL,
			Priority: scrapemate.PriorityMedium,
		},
		MatchName: matchName,
	}

	for _, opt := range opts {
		opt(&job)
	}

	return &job
}

func WithMatchJobExitMonitor(e exiter.Exiter) MatchJobOptions {
	return func(j *MatchJob) {
		j.ExitMonitor = e
	}
}

func WithMatchJobSettler(s Settler) MatchJobOptions {
	return func(j *MatchJob) {
		j.Settler = s
	}
}

func WithMatchJobExtractor(ex *LinkExtractor) MatchJobOptions {
	return func(j *MatchJob) {
		j.Extractor = ex
	}
}

func (j *MatchJob) UseInResults() bool {
	return true
}

// ProcessOnFetchError lets Process run even when navigation failed, so the
// match is counted as completed and the run moves on.
func (j *MatchJob) ProcessOnFetchError() bool {
	return true
}

func (j *MatchJob) BrowserActions(ctx context.Context, page playwright.Page) scrapemate.Response {
	var resp scrapemate.Response

	log := scrapemate.GetLoggerFromContext(ctx)
	log.Info("processing match", "match", j.MatchName)

	// the streamly button may have opened extra tabs, close them whichever
	// way this job ends
	defer closeExtraPages(page)

	pageResponse, err := page.Goto(j.GetURL(), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		resp.Error = err

		return resp
	}

	j.settler().Settle(ctx, StageListingReload)

	resp.Meta = make(map[string]any)

	if !recordNavigation(&resp, pageResponse, page.URL()) {
		resp.Meta["skip"] = "listing reload returned no response"

		return resp
	}

	card, found, err := findMatchCard(page, j.MatchName)
	if err != nil {
		resp.Error = err

		return resp
	}

	if !found {
		resp.Meta["skip"] = "match card not found on reloaded listing"

		return resp
	}

	if _, err := card.Evaluate(clickScript, nil); err != nil {
		resp.Error = fmt.Errorf("failed to open match page: %w", err)

		return resp
	}

	j.settler().Settle(ctx, StageCardOpened)

	resp.Meta["match_page_url"] = page.URL()

	buttons, err := page.Locator(streamlyButtonSelector).All()
	if err != nil {
		resp.Error = err

		return resp
	}

	button, found := firstWhere(buttons, innerTextContainsFold(streamlyButtonText))
	if !found {
		resp.Meta["skip"] = "no streamly button, match has no live stream"

		return resp
	}

	beforeURL := page.URL()

	if _, err := button.Evaluate(clickScript, nil); err != nil {
		resp.Error = fmt.Errorf("failed to follow the streamly redirect: %w", err)

		return resp
	}

	j.settler().Settle(ctx, StageRedirector)

	active := page

	if pages := page.Context().Pages(); len(pages) > 1 {
		active = pages[len(pages)-1]

		j.settler().Settle(ctx, StageTabSwitch)
	}

	streamlyURL := active.URL()
	if streamlyURL == beforeURL {
		resp.Meta["skip"] = "streamly click did not navigate anywhere"

		return resp
	}

	j.settler().Settle(ctx, StagePreExtract)

	resp.Meta["streamly_url"] = streamlyURL
	resp.Meta["frame_sources"] = collectFrameSources(active)

	body, err := active.Content()
	if err != nil {
		resp.Error = err

		return resp
	}

	resp.URL = streamlyURL
	resp.Body = []byte(body)

	return resp
}

func (j *MatchJob) Process(ctx context.Context, resp *scrapemate.Response) (any, []scrapemate.IJob, error) {
	defer func() {
		resp.Document = nil
		resp.Body = nil
		resp.Meta = nil
	}()

	defer func() {
		if j.ExitMonitor != nil {
			j.ExitMonitor.IncrMatchesCompleted(1)
		}
	}()

	log := scrapemate.GetLoggerFromContext(ctx)

	if resp.Error != nil {
		log.Warn("skipping match after navigation error", "match", j.MatchName, "error", resp.Error.Error())

		return nil, nil, nil
	}

	if reason, ok := resp.Meta["skip"].(string); ok {
		log.Info("skipping match", "match", j.MatchName, "reason", reason)

		return nil, nil, nil
	}

	doc, ok := resp.Document.(*goquery.Document)
	if !ok {
		var err error

		doc, err = goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			log.Warn("skipping match, unparseable redirector page", "match", j.MatchName, "error", err.Error())

			return nil, nil, nil
		}
	}

	matchPageURL, _ := resp.Meta["match_page_url"].(string)
	streamlyURL, _ := resp.Meta["streamly_url"].(string)
	frameSrcs, _ := resp.Meta["frame_sources"].([]string)

	links := j.extractor().Extract(doc, resp.Body, frameSrcs)

	log.Info("extracted stream links", "match", j.MatchName, "links", len(links))

	return NewMatchRecord(j.MatchName, matchPageURL, streamlyURL, links), nil, nil
}

func (j *MatchJob) settler() Settler {
	if j.Settler != nil {
		return j.Settler
	}

	return defaultSettler
}

func (j *MatchJob) extractor() *LinkExtractor {
	if j.Extractor != nil {
		return j.Extractor
	}

	return NewLinkExtractor()
}

func findMatchCard(page playwright.Page, matchName string) (playwright.Locator, bool, error) {
	els, err := page.Locator(matchCardSelector).All()
	if err != nil {
		return nil, false, fmt.Errorf("failed to enumerate match cards: %w", err)
	}

	el, found := firstWhere(els, attrContains("aria-label", matchName))

	return el, found, nil
}

// collectFrameSources reads iframe sources from the rendered page. The
// extractor filters them, this only gathers.
func collectFrameSources(page playwright.Page) []string {
	els, err := page.Locator("iframe").All()
	if err != nil {
		return nil
	}

	srcs := make([]string, 0, len(els))

	for _, el := range els {
		src, err := el.GetAttribute("src")
		if err != nil {
			continue
		}

		srcs = append(srcs, src)
	}

	return srcs
}

func closeExtraPages(page playwright.Page) {
	pages := page.Context().Pages()

	for i := 1; i < len(pages); i++ {
		_ = pages[i].Close()
	}
}
