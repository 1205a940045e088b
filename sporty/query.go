package sporty

import (
	"net/http"
	"strings"

	"github.com/gosom/scrapemate"
	"github.com/playwright-community/playwright-go"
)

// clickScript clicks an element from inside the page. The site overlays its
// cards and buttons with decorative layers that intercept native clicks.
const clickScript = `el => el.click()`

// pageElement is the slice of playwright.Locator behavior the navigation
// heuristics need. Predicates run against it so page-structure assumptions
// stay swappable and testable without a browser.
type pageElement interface {
	InnerText(options ...playwright.LocatorInnerTextOptions) (string, error)
	GetAttribute(name string, options ...playwright.LocatorGetAttributeOptions) (string, error)
}

type elementPredicate func(pageElement) bool

// firstWhere returns the first element satisfying pred.
func firstWhere[T pageElement](els []T, pred elementPredicate) (T, bool) {
	for _, el := range els {
		if pred(el) {
			return el, true
		}
	}

	var zero T

	return zero, false
}

// innerTextIsAnyFold matches elements whose visible text, trimmed and
// lowercased, equals one of targets. Targets must be lowercase already.
func innerTextIsAnyFold(targets ...string) elementPredicate {
	return func(el pageElement) bool {
		text, err := el.InnerText()
		if err != nil {
			return false
		}

		text = strings.ToLower(strings.TrimSpace(text))

		for _, target := range targets {
			if text == target {
				return true
			}
		}

		return false
	}
}

// innerTextContainsFold matches elements whose visible text contains sub,
// case insensitively.
func innerTextContainsFold(sub string) elementPredicate {
	sub = strings.ToLower(sub)

	return func(el pageElement) bool {
		text, err := el.InnerText()
		if err != nil {
			return false
		}

		return strings.Contains(strings.ToLower(text), sub)
	}
}

// attrContains matches elements whose attribute value contains sub exactly.
func attrContains(name, sub string) elementPredicate {
	return func(el pageElement) bool {
		val, err := el.GetAttribute(name)
		if err != nil {
			return false
		}

		return strings.Contains(val, sub)
	}
}

// navigationResponse is the slice of playwright's response behavior that
// recordNavigation reads.
type navigationResponse interface {
	URL() string
	Status() int
	Headers() map[string]string
}

// recordNavigation copies a finished navigation's URL, status, and headers
// into resp. Goto returns a nil response with no error when the navigation
// resolves to the page's current URL; then resp gets fallbackURL with a
// 200 and recordNavigation reports false.
func recordNavigation(resp *scrapemate.Response, pageResponse navigationResponse, fallbackURL string) bool {
	if pageResponse == nil {
		resp.URL = fallbackURL
		resp.StatusCode = http.StatusOK

		return false
	}

	resp.URL = pageResponse.URL()
	resp.StatusCode = pageResponse.Status()
	resp.Headers = make(http.Header, len(pageResponse.Headers()))

	for k, v := range pageResponse.Headers() {
		resp.Headers.Add(k, v)
	}

	return true
}
