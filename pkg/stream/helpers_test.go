package stream

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/tapmonkey/pkg/tap"
)

// fakeLine records status line commands.
type fakeLine struct {
	calls   []string
	texts   []string
	running bool
}

func (f *fakeLine) Start() {
	f.calls = append(f.calls, "start")
	f.running = true
}

func (f *fakeLine) Stop() {
	f.calls = append(f.calls, "stop")
	f.running = false
}

func (f *fakeLine) SetText(s string) {
	f.texts = append(f.texts, s)
}

func (f *fakeLine) lastText() string {
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

// fixture is a renderer wired to buffers and a fake clock.
type fixture struct {
	out    bytes.Buffer
	errOut bytes.Buffer
	line   *fakeLine
	clock  time.Time
	r      *Renderer
}

func newFixture(t *testing.T, quiet bool) *fixture {
	t.Helper()
	f := &fixture{line: &fakeLine{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	f.r = NewRenderer(&f.out, &f.errOut, f.line, Options{
		Quiet:   quiet,
		Theme:   MonoTheme(),
		HomeDir: "/home/dev",
		Now:     func() time.Time { return f.clock },
	})
	return f
}

func (f *fixture) handle(t *testing.T, events ...tap.Event) {
	t.Helper()
	for _, e := range events {
		if err := f.r.Handle(e); err != nil {
			t.Fatalf("Handle(%T) error: %v", e, err)
		}
	}
}

func (f *fixture) lines() []string {
	return strings.Split(strings.TrimSuffix(f.out.String(), "\n"), "\n")
}

func strPtr(s string) *string { return &s }

func runewidthOf(s string) int { return runewidth.StringWidth(s) }

func asserts(names ...string) []tap.AssertEvent {
	out := make([]tap.AssertEvent, len(names))
	for i, n := range names {
		out[i] = tap.AssertEvent{Name: n, Number: i + 1, OK: true}
	}
	return out
}
