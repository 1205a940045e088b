package sporty

import "time"

// MatchRecord is the scrape result for a single match. The JSON field names
// are the output contract, do not rename them.
type MatchRecord struct {
	Match        string    `json:"match"`
	MatchPageURL string    `json:"match_page_url"`
	StreamlyURL  string    `json:"streamly_url"`
	StreamLinks  []string  `json:"stream_links"`
	TotalLinks   int       `json:"total_links"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

func NewMatchRecord(match, matchPageURL, streamlyURL string, links []string) *MatchRecord {
	if links == nil {
		links = []string{}
	}

	return &MatchRecord{
		Match:        match,
		MatchPageURL: matchPageURL,
		StreamlyURL:  streamlyURL,
		StreamLinks:  links,
		TotalLinks:   len(links),
		ScrapedAt:    time.Now().UTC(),
	}
}
