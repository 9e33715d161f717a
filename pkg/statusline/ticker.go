package statusline

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Ticker draws the status line from its own goroutine on a fixed interval.
type Ticker struct {
	frames   []string
	interval time.Duration
	writer   io.Writer

	mu       sync.Mutex
	text     string
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	frameIdx int
}

// TickerConfig configures a Ticker.
type TickerConfig struct {
	Spinner spinner.Spinner // frames and interval; zero value uses Monkey
	Text    string          // initial text, DefaultText when empty
	Writer  io.Writer
}

// NewTicker creates a stopped Ticker.
func NewTicker(cfg TickerConfig) *Ticker {
	s := cfg.Spinner
	if len(s.Frames) == 0 {
		s.Frames = Monkey.Frames
	}
	if s.FPS <= 0 {
		s.FPS = Monkey.FPS
	}
	text := cfg.Text
	if text == "" {
		text = DefaultText
	}
	return &Ticker{
		frames:   s.Frames,
		interval: s.FPS,
		writer:   cfg.Writer,
		text:     text,
	}
}

// Start begins the animation.
func (t *Ticker) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	t.stopCh, t.doneCh = stopCh, doneCh
	t.mu.Unlock()

	go t.run(stopCh, doneCh)
}

// Stop halts the animation and clears the line. It returns only after the
// last frame has been drawn, so output written afterwards is never
// overwritten.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stopCh)
	done := t.doneCh
	t.mu.Unlock()

	<-done

	t.mu.Lock()
	t.clearLine()
	t.mu.Unlock()
}

// SetText replaces the text after the frame and redraws at once when running.
func (t *Ticker) SetText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.text = text
	if t.running {
		t.draw()
	}
}

// Text returns the current text.
func (t *Ticker) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text
}

// Running reports whether the animation is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Ticker) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.mu.Lock()
	t.draw()
	t.mu.Unlock()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.running {
				t.frameIdx = (t.frameIdx + 1) % len(t.frames)
				t.draw()
			}
			t.mu.Unlock()
		}
	}
}

// draw must be called with mu held.
func (t *Ticker) draw() {
	fmt.Fprintf(t.writer, "\r\033[K%s%s", t.frames[t.frameIdx], t.text)
}

func (t *Ticker) clearLine() {
	fmt.Fprint(t.writer, "\r\033[K")
}
