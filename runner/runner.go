package runner

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/streamgrab/sporty100-scraper/tlmt"
	"github.com/streamgrab/sporty100-scraper/tlmt/gonoop"
	"github.com/streamgrab/sporty100-scraper/tlmt/goposthog"
)

const (
	RunModeScrape = iota + 1
	RunModeInstallPlaywright
)

var (
	ErrInvalidRunMode = errors.New("invalid run mode")
)

type Runner interface {
	Run(context.Context) error
	Close(context.Context) error
}

type Config struct {
	Visible                  bool
	RunMode                  int
	ExitOnInactivityDuration time.Duration
}

func ParseConfig() *Config {
	cfg := Config{}

	if os.Getenv("PLAYWRIGHT_INSTALL_ONLY") == "1" {
		cfg.RunMode = RunModeInstallPlaywright

		return &cfg
	}

	flag.BoolVar(&cfg.Visible, "visible", false, "show the browser window while scraping [default: headless]")

	flag.Parse()

	if raw := os.Getenv("SPORTY_EXIT_ON_INACTIVITY"); raw != "" {
		dur, err := time.ParseDuration(raw)
		if err != nil {
			panic("SPORTY_EXIT_ON_INACTIVITY must be a duration like '5m': " + err.Error())
		}

		cfg.ExitOnInactivityDuration = dur
	}

	cfg.RunMode = RunModeScrape

	return &cfg
}

// NewLogger builds the stderr logger used outside the scrape jobs.
func NewLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lgr, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}

	return lgr
}

var (
	telemetryOnce sync.Once
	telemetry     tlmt.Telemetry
)

func Telemetry() tlmt.Telemetry {
	telemetryOnce.Do(func() {
		disableTel := func() bool {
			return os.Getenv("DISABLE_TELEMETRY") == "1"
		}()

		if disableTel {
			telemetry = gonoop.New()

			return
		}

		val, err := goposthog.New("phc_CHYBGEd1eJZzDE7ZWhyiSFuXa9KMLRnaYN47aoIAY2A", "https://eu.i.posthog.com")
		if err != nil || val == nil {
			telemetry = gonoop.New()

			return
		}

		telemetry = val
	})

	return telemetry
}

func wrapText(text string, width int) []string {
	var lines []string

	currentLine := ""
	currentWidth := 0

	for _, r := range text {
		runeWidth := runewidth.RuneWidth(r)
		if currentWidth+runeWidth > width {
			lines = append(lines, currentLine)
			currentLine = string(r)
			currentWidth = runeWidth
		} else {
			currentLine += string(r)
			currentWidth += runeWidth
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

func banner(messages []string, width int) string {
	if width <= 0 {
		var err error

		width, _, err = term.GetSize(0)
		if err != nil {
			width = 80
		}
	}

	if width < 20 {
		width = 20
	}

	contentWidth := width - 4

	var wrappedLines []string
	for _, message := range messages {
		wrappedLines = append(wrappedLines, wrapText(message, contentWidth)...)
	}

	var builder strings.Builder

	builder.WriteString("╔" + strings.Repeat("═", width-2) + "╗\n")

	for _, line := range wrappedLines {
		lineWidth := runewidth.StringWidth(line)
		paddingRight := contentWidth - lineWidth

		if paddingRight < 0 {
			paddingRight = 0
		}

		builder.WriteString(fmt.Sprintf("║ %s%s ║\n", line, strings.Repeat(" ", paddingRight)))
	}

	builder.WriteString("╚" + strings.Repeat("═", width-2) + "╝\n")

	return builder.String()
}

func Banner(visible bool) {
	mode := "headless"
	if visible {
		mode = "visible browser"
	}

	messages := []string{
		"⚽ Sporty100 Stream Scraper",
		"Mode: " + mode,
	}

	if !visible {
		messages = append(messages, "Tip: use -visible to watch the browser work")
	}

	fmt.Fprintln(os.Stderr, banner(messages, 0))
}
