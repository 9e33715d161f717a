package stream

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTooManyBorders is returned for a fourth border row. A coverage table has
// exactly three: top, below the header, and bottom.
var ErrTooManyBorders = errors.New("too many borders in coverage report")

// borderMarker starts every border row of a text coverage table.
const borderMarker = "----"

type borderStyle struct {
	left, junction, right, after string
}

var borderStyles = [...]borderStyle{
	1: {left: "╭─", junction: "─┬─", right: "─╮"},
	2: {left: "├─", junction: "─┼─", right: "─┤"},
	3: {left: "╰─", junction: "─┴─", right: "─╯", after: "\n"},
}

// IsBorder reports whether raw is a border row of a coverage table. Leading
// whitespace is ignored for detection. A content cell that happens to start
// with four dashes is indistinguishable and is treated as a border.
func IsBorder(raw string) bool {
	return strings.HasPrefix(strings.TrimLeft(raw, " \t"), borderMarker)
}

// CoverageBorder reskins the ordinal-th border row of a coverage table.
func CoverageBorder(raw string, ordinal int) (string, error) {
	if ordinal < 1 {
		return "", fmt.Errorf("border ordinal %d: must be positive", ordinal)
	}
	if ordinal >= len(borderStyles) {
		return "", fmt.Errorf("border %d: %w", ordinal, ErrTooManyBorders)
	}
	st := borderStyles[ordinal]
	line := st.left + strings.ReplaceAll(raw, "-|-", st.junction) + st.right + st.after
	return boxDraw(line), nil
}

// CoverageRow wraps a content row of a coverage table in side rules.
func CoverageRow(raw string) string {
	return boxDraw("│ " + raw + " │")
}

// boxDraw swaps the ASCII rules left after wrapping for box-drawing ones.
// It runs last so the junction substitutions above see the original text.
func boxDraw(s string) string {
	return strings.NewReplacer("|", "│", "-", "─").Replace(s)
}
