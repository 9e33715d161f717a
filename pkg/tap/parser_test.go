package tap

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tapeOutput = `TAP version 13
# addition
ok 1 should be equal
ok 2 should be strictly equal
# subtraction
not ok 3 should be equal
  ---
    operator: equal
    expected: 2
    actual:   3
    at: Test.<anonymous> (/home/dev/project/test/math.js:12:5)
    stack: |-
      Error: should be equal
          at Test.assert (/home/dev/project/node_modules/tape/lib/test.js:312:54)
  ...
ok 4 # SKIP not on this platform

1..4
# tests 4
# pass  3
# fail  1
`

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind()
	}
	return out
}

func TestParse_EmitsEventsInSourceOrder_When_GivenTapeOutput(t *testing.T) {
	events, err := ParseString(tapeOutput)
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		KindTest, KindAssert, KindAssert,
		KindTest, KindAssert, KindAssert,
		KindSummary,
	}, kinds(events))

	assert.Equal(t, TestEvent{Name: "addition"}, events[0])
	first := events[1].(AssertEvent)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "should be equal", first.Name)
	assert.True(t, first.OK)
	assert.Nil(t, first.Error)
}

func TestParse_AttachesDiagnostics_When_AssertFails(t *testing.T) {
	events, err := ParseString(tapeOutput)
	require.NoError(t, err)

	failed := events[4].(AssertEvent)
	require.False(t, failed.OK)
	require.NotNil(t, failed.Error)

	d := failed.Error
	require.NotNil(t, d.Operator)
	assert.Equal(t, "equal", *d.Operator)
	require.NotNil(t, d.Expected)
	assert.Equal(t, "2", *d.Expected)
	require.NotNil(t, d.Actual)
	assert.Equal(t, "3", *d.Actual)
	require.NotNil(t, d.At)
	assert.Equal(t, Location{File: "/home/dev/project/test/math.js", Line: "12", Column: "5"}, *d.At)
	assert.Equal(t, "Error: should be equal\n    at Test.assert (/home/dev/project/node_modules/tape/lib/test.js:312:54)", d.Stack)
}

func TestParse_BuildsSummary_When_StreamEnds(t *testing.T) {
	events, err := ParseString(tapeOutput)
	require.NoError(t, err)

	summary := events[len(events)-1].(SummaryEvent)
	assert.Len(t, summary.Asserts, 4)
	assert.Len(t, summary.Pass, 3)
	assert.Len(t, summary.Fail, 1)
	assert.Equal(t, []Plan{{From: 1, To: 4}}, summary.Plans)
	assert.Equal(t, 13, summary.Version)
}

func TestParse_ReadsDirective_When_AssertIsSkippedOrTodo(t *testing.T) {
	events, err := ParseString("ok 1 # SKIP no network\nnot ok 2 flaky thing # TODO fix later\n")
	require.NoError(t, err)
	require.Len(t, events, 3)

	skipped := events[0].(AssertEvent)
	assert.Equal(t, DirectiveSkip, skipped.Directive)
	assert.Equal(t, "", skipped.Name)

	todo := events[1].(AssertEvent)
	assert.Equal(t, DirectiveTodo, todo.Directive)
	assert.Equal(t, "flaky thing", todo.Name)
	assert.True(t, todo.Passed())

	summary := events[2].(SummaryEvent)
	assert.Len(t, summary.Pass, 2)
	assert.Empty(t, summary.Fail)
}

func TestParse_LeavesFieldsNil_When_DiagnosticOmitsThem(t *testing.T) {
	input := "not ok 1 boom\n  ---\n    stack: |-\n      Error: boom\n  ...\n"
	events, err := ParseString(input)
	require.NoError(t, err)

	d := events[0].(AssertEvent).Error
	require.NotNil(t, d)
	assert.Nil(t, d.Operator)
	assert.Nil(t, d.Expected)
	assert.Nil(t, d.Actual)
	assert.Nil(t, d.At)
	assert.Equal(t, "Error: boom", d.Stack)
}

func TestDecodeDiagnostic_DecodesScalars_When_BlockIsPlainYAML(t *testing.T) {
	lines := []string{"    operator: equal", "    expected: 1", "    actual:   2"}

	d, err := decodeDiagnostic(lines, "  ")

	require.NoError(t, err)
	require.NotNil(t, d.Operator)
	assert.Equal(t, "equal", *d.Operator)
	require.NotNil(t, d.Expected)
	assert.Equal(t, "1", *d.Expected)
	require.NotNil(t, d.Actual)
	assert.Equal(t, "2", *d.Actual)
	assert.Nil(t, d.At)
	assert.Empty(t, d.Stack, "a decodable block must not fall back to the raw text")
}

func TestParse_TreatsNullAsAbsent_When_FieldIsNull(t *testing.T) {
	input := "not ok 1 boom\n  ---\n    expected: ~\n    actual: null\n  ...\n"
	events, err := ParseString(input)
	require.NoError(t, err)

	d := events[0].(AssertEvent).Error
	assert.Nil(t, d.Expected)
	assert.Nil(t, d.Actual)
}

func TestParse_DecodesMappingLocation_When_AtIsObject(t *testing.T) {
	input := strings.Join([]string{
		"not ok 2 TypeError: Cannot convert undefined or null to object",
		"  ---",
		"    operator: error",
		"    at:",
		"      file: /home/dev/project/node_modules/onetime/index.js",
		"      line: 30",
		"      character: 12",
		"  ...",
	}, "\n")
	events, err := ParseString(input)
	require.NoError(t, err)

	d := events[0].(AssertEvent).Error
	require.NotNil(t, d.At)
	assert.Equal(t, "/home/dev/project/node_modules/onetime/index.js:30:12", d.At.String())
}

func TestParse_RendersCollectionsAsFlowYAML_When_ExpectedIsStructured(t *testing.T) {
	input := "not ok 1 deep equal\n  ---\n    expected:\n      a: 1\n    actual: [1, 2]\n  ...\n"
	events, err := ParseString(input)
	require.NoError(t, err)

	d := events[0].(AssertEvent).Error
	require.NotNil(t, d.Expected)
	assert.Equal(t, "{a: 1}", *d.Expected)
	require.NotNil(t, d.Actual)
	assert.Equal(t, "[1, 2]", *d.Actual)
}

func TestParse_KeepsRawTextAsStack_When_DiagnosticIsNotYAML(t *testing.T) {
	input := "not ok 1 bad block\n  ---\n    : : :\n   [unclosed\n  ...\n"
	events, err := ParseString(input)
	require.NoError(t, err)

	d := events[0].(AssertEvent).Error
	require.NotNil(t, d)
	assert.Contains(t, d.Stack, "[unclosed")
}

func TestParse_EmitsComments_When_LinesAreUnclassified(t *testing.T) {
	input := strings.Join([]string{
		"ok 1 works",
		"console output from a test",
		"----------|---------|----------|",
		"File      | % Stmts | % Branch |",
	}, "\n")
	events, err := ParseString(input)
	require.NoError(t, err)

	require.Len(t, events, 5)
	assert.Equal(t, CommentEvent{Raw: "console output from a test"}, events[1])
	assert.Equal(t, CommentEvent{Raw: "----------|---------|----------|"}, events[2])
	assert.Equal(t, CommentEvent{Raw: "File      | % Stmts | % Branch |"}, events[3])
}

func TestParse_SwallowsResultLines_When_ProducerPrintsTotals(t *testing.T) {
	events, err := ParseString("# tests 2\n# pass  2\n# fail 0\n# ok\n")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindSummary}, kinds(events))
}

func TestParse_EmitsBailOut_When_ProducerGivesUp(t *testing.T) {
	events, err := ParseString("ok 1 first\nBail out! database unreachable\n")
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, BailOutEvent{Raw: "Bail out! database unreachable", Reason: "database unreachable"}, events[1])
}

func TestParse_FlushesPendingAssert_When_YAMLBlockNeverCloses(t *testing.T) {
	events, err := ParseString("not ok 1 cut short\n  ---\n    operator: fail\n")
	require.NoError(t, err)

	require.Len(t, events, 2)
	d := events[0].(AssertEvent).Error
	require.NotNil(t, d.Operator)
	assert.Equal(t, "fail", *d.Operator)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want Location
	}{
		{"/a/b.js:1:2", Location{File: "/a/b.js", Line: "1", Column: "2"}},
		{"bound (/a/b.js:30:12)", Location{File: "/a/b.js", Line: "30", Column: "12"}},
		{"file:///a/b.js:7:1", Location{File: "/a/b.js", Line: "7", Column: "1"}},
		{"/a/b.js:9", Location{File: "/a/b.js", Line: "9"}},
		{"<anonymous>", Location{File: "<anonymous>"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, *ParseLocation(tt.in))
		})
	}
}

// blockingReader never returns from Read, simulating a stalled stdin.
type blockingReader struct {
	done chan struct{}
}

func (b *blockingReader) Read([]byte) (int, error) {
	<-b.done
	return 0, io.EOF
}

func (b *blockingReader) Close() error {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
	return nil
}

func TestStream_CancelUnblocksBlockedReader(t *testing.T) {
	br := &blockingReader{done: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var summaries int
	done := make(chan error, 1)
	go func() {
		done <- Stream(ctx, br, func(e Event) {
			if e.Kind() == KindSummary {
				summaries++
			}
		})
	}()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
		assert.Zero(t, summaries)
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after context cancellation")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestStream_WrapsReadError_When_ReaderFails(t *testing.T) {
	err := Stream(context.Background(), failingReader{}, func(Event) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning TAP input")
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestStream_EmitsPassingAssert_When_NextLineHasNotArrived(t *testing.T) {
	pr, pw := io.Pipe()
	events := make(chan Event, 8)
	done := make(chan error, 1)
	go func() {
		done <- Stream(context.Background(), pr, func(e Event) { events <- e })
	}()

	_, err := pw.Write([]byte("ok 1 fast\n"))
	require.NoError(t, err)

	select {
	case e := <-events:
		a, ok := e.(AssertEvent)
		require.True(t, ok, "got %T", e)
		assert.Equal(t, "fast", a.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("passing assert was held back")
	}

	require.NoError(t, pw.Close())
	require.NoError(t, <-done)
}

func TestParse_DropsDiagnostics_When_AssertPassed(t *testing.T) {
	input := "ok 1 fine\n  ---\n    duration_ms: 4\n  ...\nok 2 also fine\n"
	events, err := ParseString(input)
	require.NoError(t, err)

	assert.Equal(t, []Kind{KindAssert, KindAssert, KindSummary}, kinds(events))
	assert.Nil(t, events[0].(AssertEvent).Error)
}
