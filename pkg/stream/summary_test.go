package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dkoosis/tapmonkey/pkg/tap"
)

func TestTotalsOf_CountsSequenceLengths(t *testing.T) {
	s := tap.SummaryEvent{
		Asserts: asserts("a", "b", "c"),
		Pass:    asserts("a"),
		Fail:    asserts("b", "c"),
	}
	got := TotalsOf(s, 1500*time.Millisecond)
	assert.Equal(t, Totals{Total: 3, Passing: 1, Failing: 2, Duration: 1500 * time.Millisecond}, got)
}

func TestFormatter_Summary_PrintsSuccessBanner_When_NothingFailed(t *testing.T) {
	f := Formatter{Theme: MonoTheme()}
	got := f.Summary(Totals{Total: 3, Passing: 3, Duration: 1234 * time.Millisecond}, false)

	assert.Equal(t, []string{
		"  All tests passing!",
		"",
		"     Total  3",
		"   Passing  3",
		"   Failing  0",
		"  Duration  1.23 secs",
	}, got)
}

func TestFormatter_Summary_PrintsFailureBanner_When_Failed(t *testing.T) {
	f := Formatter{Theme: DefaultTheme()}
	got := f.Summary(Totals{Total: 3, Passing: 1, Failing: 2}, true)

	assert.Contains(t, got[0], "There are failed tests.")
	assert.Contains(t, got[0], "🙊")
	assert.Contains(t, got[3], "1")
	assert.Contains(t, got[4], "2")
}

func TestFormatter_Summary_GroupsLargeNumbers(t *testing.T) {
	f := Formatter{Theme: MonoTheme()}
	got := f.Summary(Totals{Total: 12045, Passing: 12040, Failing: 5}, true)

	assert.Equal(t, "     Total  12,045", got[2])
	assert.Equal(t, "   Passing  12,040", got[3])
}

func TestFormatter_Summary_RoundsDurationToHundredths(t *testing.T) {
	f := Formatter{Theme: MonoTheme()}
	got := f.Summary(Totals{Duration: 2*time.Second + 5*time.Millisecond + 900*time.Microsecond}, false)

	assert.Equal(t, "  Duration  2.01 secs", got[5])
}
