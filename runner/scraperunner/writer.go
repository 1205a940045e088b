package scraperunner

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/gosom/scrapemate"
	"go.uber.org/zap"

	"github.com/streamgrab/sporty100-scraper/exiter"
	"github.com/streamgrab/sporty100-scraper/sporty"
)

// resultWriter accumulates match records and rewrites the whole output file
// after every append. A crash mid-run loses at most the in-flight match.
type resultWriter struct {
	mu      sync.Mutex
	records []*sporty.MatchRecord

	path        string
	lgr         *zap.Logger
	exitMonitor exiter.Exiter
}

func newResultWriter(path string, lgr *zap.Logger, exitMonitor exiter.Exiter) *resultWriter {
	if lgr == nil {
		lgr = zap.NewNop()
	}

	return &resultWriter{
		records:     make([]*sporty.MatchRecord, 0),
		path:        path,
		lgr:         lgr,
		exitMonitor: exitMonitor,
	}
}

func (w *resultWriter) Run(ctx context.Context, in <-chan scrapemate.Result) error {
	for {
		select {
		case <-ctx.Done():
			return w.flush()
		case result, ok := <-in:
			if !ok {
				return w.flush()
			}

			// skipped matches come through as results with no data
			if result.Data == nil {
				continue
			}

			record, ok := result.Data.(*sporty.MatchRecord)
			if !ok {
				w.lgr.Warn("dropping result of unexpected type")

				continue
			}

			if err := w.append(record); err != nil {
				return err
			}
		}
	}
}

func (w *resultWriter) append(record *sporty.MatchRecord) error {
	w.mu.Lock()
	w.records = append(w.records, record)
	w.mu.Unlock()

	if err := w.flush(); err != nil {
		return err
	}

	if w.exitMonitor != nil {
		w.exitMonitor.IncrRecordsWritten(1)
	}

	w.lgr.Info("saved match record",
		zap.String("match", record.Match),
		zap.Int("links", record.TotalLinks),
	)

	return nil
}

// flush rewrites the output file as a pretty printed JSON array. HTML
// escaping is off so URLs survive byte for byte.
func (w *resultWriter) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Create(w.path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(w.records); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

func (w *resultWriter) Records() []*sporty.MatchRecord {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]*sporty.MatchRecord, len(w.records))
	copy(out, w.records)

	return out
}
