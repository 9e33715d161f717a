// Package statusline owns the single overwritable line of terminal output
// that shows live progress while permanent output scrolls above it.
package statusline

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Line is an animated status line. All methods are idempotent: starting a
// started line or stopping a stopped one has no further effect, and SetText
// never fails while the line is stopped (the text shows on the next Start).
type Line interface {
	Start()
	Stop()
	SetText(text string)
}

// Monkey is the default animation. At 300ms per frame not every update is
// visible, which is fine: anything that matters is printed permanently.
var Monkey = spinner.Spinner{
	Frames: []string{"  🙈 ", "  🙈 ", "  🙉 ", "  🙊 "},
	FPS:    300 * time.Millisecond,
}

// DefaultText is shown until the first test starts.
const DefaultText = "Running tests…"

// Nop is a Line that draws nothing, for output that is not a terminal.
type Nop struct{}

func (Nop) Start()         {}
func (Nop) Stop()          {}
func (Nop) SetText(string) {}
