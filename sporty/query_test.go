package sporty

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gosom/scrapemate"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

type fakeElement struct {
	text    string
	attrs   map[string]string
	textErr error
	attrErr error
}

func (f *fakeElement) InnerText(_ ...playwright.LocatorInnerTextOptions) (string, error) {
	return f.text, f.textErr
}

func (f *fakeElement) GetAttribute(name string, _ ...playwright.LocatorGetAttributeOptions) (string, error) {
	return f.attrs[name], f.attrErr
}

func Test_FirstWhere(t *testing.T) {
	els := []*fakeElement{
		{text: "Upcoming"},
		{text: "  LIVE  "},
		{text: "Live"},
	}

	el, found := firstWhere(els, innerTextIsAnyFold("live", "live now"))
	require.True(t, found)
	require.Equal(t, els[1], el)
}

func Test_FirstWhere_NoMatch(t *testing.T) {
	els := []*fakeElement{
		{text: "Finished"},
		{text: "Upcoming"},
	}

	_, found := firstWhere(els, innerTextIsAnyFold("live", "live now"))
	require.False(t, found)
}

func Test_InnerTextIsAnyFold(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "exact", text: "live", want: true},
		{name: "upper", text: "LIVE", want: true},
		{name: "padded", text: "\n live now \t", want: true},
		{name: "substring only", text: "live scores", want: false},
		{name: "empty", text: "", want: false},
	}

	pred := innerTextIsAnyFold("live", "live now")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, pred(&fakeElement{text: tt.text}))
		})
	}
}

func Test_InnerTextContainsFold(t *testing.T) {
	pred := innerTextContainsFold("streamly")

	require.True(t, pred(&fakeElement{text: "Go to Streamly"}))
	require.True(t, pred(&fakeElement{text: "STREAMLY →"}))
	require.False(t, pred(&fakeElement{text: "Go to stream"}))
}

func Test_AttrContains(t *testing.T) {
	pred := attrContains("aria-label", "Arsenal vs Chelsea")

	require.True(t, pred(&fakeElement{attrs: map[string]string{
		"aria-label": "View details for match: Arsenal vs Chelsea",
	}}))

	// attribute comparison is case sensitive
	require.False(t, pred(&fakeElement{attrs: map[string]string{
		"aria-label": "View details for match: arsenal vs chelsea",
	}}))
}

func Test_Predicates_ReadErrors(t *testing.T) {
	broken := &fakeElement{
		text:    "live",
		attrs:   map[string]string{"aria-label": "live"},
		textErr: errors.New("detached"),
		attrErr: errors.New("detached"),
	}

	require.False(t, innerTextIsAnyFold("live")(broken))
	require.False(t, innerTextContainsFold("live")(broken))
	require.False(t, attrContains("aria-label", "live")(broken))
}

type fakeNavigation struct {
	url     string
	status  int
	headers map[string]string
}

func (f *fakeNavigation) URL() string                { return f.url }
func (f *fakeNavigation) Status() int                { return f.status }
func (f *fakeNavigation) Headers() map[string]string { return f.headers }

func Test_RecordNavigation(t *testing.T) {
	var resp scrapemate.Response

	nav := &fakeNavigation{
		url:     "https://sporty100.com/match/9",
		status:  http.StatusOK,
		headers: map[string]string{"content-type": "text/html"},
	}

	require.True(t, recordNavigation(&resp, nav, "https://sporty100.com/"))
	require.Equal(t, "https://sporty100.com/match/9", resp.URL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/html", resp.Headers.Get("Content-Type"))
}

func Test_RecordNavigation_NilResponse(t *testing.T) {
	var resp scrapemate.Response

	// same-URL navigations yield no response at all
	var pageResponse playwright.Response

	require.False(t, recordNavigation(&resp, pageResponse, "https://sporty100.com/"))
	require.Equal(t, "https://sporty100.com/", resp.URL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, resp.Headers)
}
