package sporty_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gosom/scrapemate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamgrab/sporty100-scraper/exiter"
	"github.com/streamgrab/sporty100-scraper/sporty"
)

const redirectorHTML = `<html><body>
	<iframe src="https://scdn.monster/embed/77"></iframe>
	<a href="https://mirror.example.net/live/77">mirror</a>
</body></html>`

func matchResponse() *scrapemate.Response {
	return &scrapemate.Response{
		URL:        "https://scdn.monster/watch/77",
		StatusCode: 200,
		Body:       []byte(redirectorHTML),
		Meta: map[string]any{
			"match_page_url": "https://sporty100.com/match/77",
			"streamly_url":   "https://scdn.monster/watch/77",
			"frame_sources":  []string{"https://scdn.monster/embed/77"},
		},
	}
}

func newMatchJob(monitor exiter.Exiter) *sporty.MatchJob {
	return sporty.NewMatchJob("parent", "Arsenal vs Chelsea", sporty.BaseURL,
		sporty.WithMatchJobExitMonitor(monitor),
		sporty.WithMatchJobSettler(sporty.InstantSettler{}),
		sporty.WithMatchJobExtractor(sporty.NewLinkExtractor()),
	)
}

func Test_MatchJob_BuildsRecord(t *testing.T) {
	monitor := exiter.New()
	job := newMatchJob(monitor)

	result, next, err := job.Process(context.Background(), matchResponse())
	require.NoError(t, err)
	require.Empty(t, next)

	record, ok := result.(*sporty.MatchRecord)
	require.True(t, ok)

	assert.Equal(t, "Arsenal vs Chelsea", record.Match)
	assert.Equal(t, "https://sporty100.com/match/77", record.MatchPageURL)
	assert.Equal(t, "https://scdn.monster/watch/77", record.StreamlyURL)
	assert.Equal(t, []string{
		"https://scdn.monster/embed/77",
		"https://mirror.example.net/live/77",
	}, record.StreamLinks)
	assert.Equal(t, 2, record.TotalLinks)
	assert.False(t, record.ScrapedAt.IsZero())

	completed, _ := monitor.GetMatchProgress()
	assert.Equal(t, 1, completed)
}

func Test_MatchJob_SkipMarker(t *testing.T) {
	monitor := exiter.New()
	job := newMatchJob(monitor)

	resp := matchResponse()
	resp.Meta = map[string]any{"skip": "no streamly button, match has no live stream"}

	result, next, err := job.Process(context.Background(), resp)
	require.NoError(t, err)
	require.Nil(t, result)
	require.Empty(t, next)

	// a skipped match still counts as completed so the run can finish
	completed, _ := monitor.GetMatchProgress()
	assert.Equal(t, 1, completed)
}

func Test_MatchJob_FetchError(t *testing.T) {
	monitor := exiter.New()
	job := newMatchJob(monitor)

	resp := &scrapemate.Response{Error: errors.New("net::ERR_ABORTED")}

	result, next, err := job.Process(context.Background(), resp)
	require.NoError(t, err)
	require.Nil(t, result)
	require.Empty(t, next)

	completed, _ := monitor.GetMatchProgress()
	assert.Equal(t, 1, completed)
}

func Test_MatchJob_EmptyRedirector(t *testing.T) {
	job := newMatchJob(exiter.New())

	resp := matchResponse()
	resp.Body = []byte("<html><body>nothing here</body></html>")
	resp.Meta["frame_sources"] = []string{}

	result, _, err := job.Process(context.Background(), resp)
	require.NoError(t, err)

	record, ok := result.(*sporty.MatchRecord)
	require.True(t, ok)

	// a reachable redirector with no links still yields a record
	assert.Empty(t, record.StreamLinks)
	assert.Equal(t, 0, record.TotalLinks)
}

func Test_MatchJob_Flags(t *testing.T) {
	job := sporty.NewMatchJob("parent", "A vs B", sporty.BaseURL)

	require.True(t, job.UseInResults())
	require.True(t, job.ProcessOnFetchError())
	require.Equal(t, "parent", job.ParentID)
}
