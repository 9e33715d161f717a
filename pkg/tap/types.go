// Package tap parses Test Anything Protocol streams into typed events.
package tap

import "strings"

// Kind identifies the event variant.
type Kind int

const (
	KindTest Kind = iota
	KindAssert
	KindComment
	KindBailOut
	KindSummary
)

func (k Kind) String() string {
	switch k {
	case KindTest:
		return "test"
	case KindAssert:
		return "assert"
	case KindComment:
		return "comment"
	case KindBailOut:
		return "bailOut"
	case KindSummary:
		return "output"
	default:
		return "unknown"
	}
}

// Event is one protocol occurrence. The set of implementations is closed:
// TestEvent, AssertEvent, CommentEvent, BailOutEvent and SummaryEvent.
type Event interface {
	Kind() Kind
	event()
}

// TestEvent marks the start of a named test group (a "# name" line).
type TestEvent struct {
	Name string
}

// AssertEvent is a single "ok" / "not ok" line, with its YAML diagnostics
// attached when the assertion failed.
type AssertEvent struct {
	Name      string
	Number    int
	OK        bool
	Directive Directive
	Error     *FailureDetail // set only for failing assertions
	Raw       string
}

// Passed reports whether the assertion counts as passing. A failing TODO
// assertion is expected to fail and does not count against the run.
func (a AssertEvent) Passed() bool {
	return a.OK || a.Directive == DirectiveTodo
}

// Directive is the optional "# SKIP" / "# TODO" suffix of an assertion.
type Directive string

const (
	DirectiveNone Directive = ""
	DirectiveSkip Directive = "SKIP"
	DirectiveTodo Directive = "TODO"
)

// FailureDetail is the decoded YAML diagnostic block of a failing assertion.
// Optional fields are nil when the block did not carry them.
type FailureDetail struct {
	Operator *string
	Expected *string
	Actual   *string
	At       *Location
	Stack    string
}

// Location is the call site of a failed assertion.
type Location struct {
	File   string
	Line   string
	Column string
}

// String renders the location as file:line:column, skipping empty parts.
func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.File, l.Line, l.Column} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ":")
}

// CommentEvent is any line the parser could not classify, such as console
// output from the tests or a coverage report.
type CommentEvent struct {
	Raw string
}

// BailOutEvent signals that the producer gave up. Raw is the full line,
// Reason the text after "Bail out!".
type BailOutEvent struct {
	Raw    string
	Reason string
}

// Plan is a "1..N" line.
type Plan struct {
	From int
	To   int
}

// SummaryEvent is emitted exactly once, at the end of the stream.
type SummaryEvent struct {
	Asserts []AssertEvent
	Pass    []AssertEvent
	Fail    []AssertEvent
	Plans   []Plan
	Version int
}

func (TestEvent) Kind() Kind    { return KindTest }
func (AssertEvent) Kind() Kind  { return KindAssert }
func (CommentEvent) Kind() Kind { return KindComment }
func (BailOutEvent) Kind() Kind { return KindBailOut }
func (SummaryEvent) Kind() Kind { return KindSummary }

func (TestEvent) event()    {}
func (AssertEvent) event()  {}
func (CommentEvent) event() {}
func (BailOutEvent) event() {}
func (SummaryEvent) event() {}

// ProcessFunc receives events in source order.
type ProcessFunc func(Event)
