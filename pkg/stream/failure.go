package stream

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/tapmonkey/pkg/tap"
)

// labelWidth aligns the values of the diagnostic lines.
const labelWidth = len("operator:") + 1

// Formatter turns failures and the final summary into printable lines.
// It holds no session state.
type Formatter struct {
	Theme   Theme
	HomeDir string // replaced by ~ in failure locations when set
}

// Failure formats a failed assertion. Each optional diagnostic field gets a
// line only when present; the stack follows verbatim, indented.
func (f Formatter) Failure(name string, d *tap.FailureDetail) []string {
	th := f.Theme
	if d == nil {
		d = &tap.FailureDetail{}
	}

	lines := []string{
		th.Error.Render(joinNonEmpty(th.Icons.Fail, "FAIL:")) + " " + name,
		"",
	}
	if d.Operator != nil {
		lines = append(lines, "  "+label("operator")+*d.Operator)
	}
	if d.Expected != nil {
		lines = append(lines, "  "+th.Success.Render(label("expected")+*d.Expected))
	}
	if d.Actual != nil {
		lines = append(lines, "  "+th.Error.Render(label("actual")+*d.Actual))
	}
	if d.At != nil {
		lines = append(lines, "  "+th.Warning.Render(label("at")+f.location(*d.At)))
	}
	lines = append(lines, "")

	if d.Stack != "" {
		stack := th.Muted.TabWidth(lipgloss.NoTabConversion)
		for _, l := range strings.Split(d.Stack, "\n") {
			lines = append(lines, "  "+stack.Render(l))
		}
	}
	return lines
}

func label(name string) string {
	return runewidth.FillRight(name+":", labelWidth)
}

func (f Formatter) location(loc tap.Location) string {
	loc.File = strings.TrimPrefix(loc.File, "file://")
	if f.HomeDir != "" && strings.HasPrefix(loc.File, f.HomeDir+"/") {
		loc.File = "~" + strings.TrimPrefix(loc.File, f.HomeDir)
	}
	return loc.String()
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
