package scraperunner

import (
	"fmt"
	"io"

	"github.com/streamgrab/sporty100-scraper/sporty"
)

const maxLinksShown = 5

func writeSummary(w io.Writer, records []*sporty.MatchRecord, outfile string) {
	if len(records) == 0 {
		fmt.Fprintln(w, "\nNo results scraped.")
		fmt.Fprintf(w, "Check %s or %s if they were created.\n", sporty.ListingDebugFile, sporty.RedirectorDebugFile)

		return
	}

	fmt.Fprintf(w, "\nScraped %d matches:\n\n", len(records))

	for _, record := range records {
		fmt.Fprintf(w, "  %s\n", record.Match)
		fmt.Fprintf(w, "    Streamly: %s\n", record.StreamlyURL)
		fmt.Fprintf(w, "    Links found: %d\n", record.TotalLinks)

		for i, link := range record.StreamLinks {
			if i == maxLinksShown {
				fmt.Fprintf(w, "      ... and %d more\n", record.TotalLinks-maxLinksShown)

				break
			}

			fmt.Fprintf(w, "      - %s\n", link)
		}
	}

	fmt.Fprintf(w, "\nSaved to: %s\n", outfile)
}
