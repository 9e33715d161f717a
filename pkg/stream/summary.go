package stream

import (
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dkoosis/tapmonkey/pkg/tap"
)

// summaryLabelWidth is the right-aligned label column of the totals block.
const summaryLabelWidth = 10

// Totals are the counts reported at the end of a run.
type Totals struct {
	Total    int
	Passing  int
	Failing  int
	Duration time.Duration
}

// TotalsOf derives the counts from the summary's assertion lists.
func TotalsOf(s tap.SummaryEvent, elapsed time.Duration) Totals {
	return Totals{
		Total:    len(s.Asserts),
		Passing:  len(s.Pass),
		Failing:  len(s.Fail),
		Duration: elapsed,
	}
}

// Summary formats the banner and totals. failed selects the failure banner.
func (f Formatter) Summary(t Totals, failed bool) []string {
	th := f.Theme
	p := message.NewPrinter(language.English)

	banner := "  " + joinNonEmpty(th.Icons.BannerPass, th.Success.Render("All tests passing!"))
	if failed {
		banner = "  " + joinNonEmpty(th.Icons.BannerFail, th.Accent.Render("There are failed tests."))
	}

	row := func(name, value string) string {
		return runewidth.FillLeft(name, summaryLabelWidth) + "  " + value
	}
	return []string{
		banner,
		"",
		row("Total", p.Sprintf("%d", t.Total)),
		th.Success.Render(row("Passing", p.Sprintf("%d", t.Passing))),
		th.Error.Render(row("Failing", p.Sprintf("%d", t.Failing))),
		th.Muted.Render(row("Duration", p.Sprintf("%.2f secs", t.Duration.Seconds()))),
	}
}
