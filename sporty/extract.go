package sporty

import (
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// RedirectorDebugFile receives the markup of the first redirector page
// reached in a run. Overwritten on the next run.
const RedirectorDebugFile = "debug_scdn_page.html"

// streamKeywords classify a hyperlink as a stream candidate. Matched
// case insensitively against the whole URL.
var streamKeywords = []string{"m3u8", ".ts", "stream", "live", "play", "embed", "player"}

// skipFragments drop hyperlinks pointing back at the listing site or at
// social/boilerplate pages that the keywords would otherwise catch.
// Matched against the href exactly as written.
var skipFragments = []string{
	"sporty100.com",
	"google",
	"facebook",
	"twitter",
	"instagram",
	"about-us",
	"privacy",
	"contact",
	"terms",
}

type LinkExtractorOption func(*LinkExtractor)

// LinkExtractor pulls candidate stream URLs out of a redirector page. One
// instance serves a whole run: it owns the once-per-run debug snapshot.
type LinkExtractor struct {
	snapshotPath string
	snapshotOnce sync.Once
}

func NewLinkExtractor(opts ...LinkExtractorOption) *LinkExtractor {
	ex := &LinkExtractor{}

	for _, opt := range opts {
		opt(ex)
	}

	return ex
}

// WithDebugSnapshot makes the extractor save the first page it sees to path.
func WithDebugSnapshot(path string) LinkExtractorOption {
	return func(ex *LinkExtractor) {
		ex.snapshotPath = path
	}
}

// Extract returns candidate stream URLs in discovery order, deduplicated by
// exact string comparison. liveFrameSrcs are iframe sources read from the
// rendered page; doc and raw are the static markup of the same page. The
// live sources run first so they win ordering over their static duplicates.
func (ex *LinkExtractor) Extract(doc *goquery.Document, raw []byte, liveFrameSrcs []string) []string {
	ex.maybeSnapshot(raw)

	seen := make(map[string]bool)
	links := make([]string, 0, 8)

	add := func(u string) {
		if u == "" || seen[u] {
			return
		}

		seen[u] = true

		links = append(links, u)
	}

	for _, src := range liveFrameSrcs {
		if validFrameSource(src) {
			add(src)
		}
	}

	if doc != nil {
		doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
			if src := strings.TrimSpace(s.AttrOr("src", "")); validFrameSource(src) {
				add(src)
			}
		})

		doc.Find("video[src], source[src]").Each(func(_ int, s *goquery.Selection) {
			add(strings.TrimSpace(s.AttrOr("src", "")))
		})

		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			if href := strings.TrimSpace(s.AttrOr("href", "")); isStreamHyperlink(href) {
				add(href)
			}
		})
	}

	return links
}

func validFrameSource(src string) bool {
	return src != "" && src != "about:blank"
}

// isStreamHyperlink reports whether a trimmed href looks like a stream
// page. Skip fragments match the href as written, keywords match case
// insensitively.
func isStreamHyperlink(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return false
	}

	for _, skip := range skipFragments {
		if strings.Contains(href, skip) {
			return false
		}
	}

	lower := strings.ToLower(href)

	for _, kw := range streamKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return false
}

func (ex *LinkExtractor) maybeSnapshot(raw []byte) {
	if ex.snapshotPath == "" || len(raw) == 0 {
		return
	}

	ex.snapshotOnce.Do(func() {
		//nolint:gosec // debug artifact, world readable is fine
		_ = os.WriteFile(ex.snapshotPath, raw, 0o644)
	})
}
