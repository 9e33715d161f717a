package statusline

import (
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Program draws the status line with a bubbletea program. Each Start runs a
// fresh program; Stop quits it with an empty final view so the line is gone
// before any permanent output is written.
type Program struct {
	spinner spinner.Spinner
	out     io.Writer

	mu   sync.Mutex
	text string
	prog *tea.Program
	done chan struct{}
}

// NewProgram creates a stopped Program writing to out.
func NewProgram(s spinner.Spinner, out io.Writer) *Program {
	if len(s.Frames) == 0 {
		s = Monkey
	}
	return &Program{spinner: s, out: out, text: DefaultText}
}

type textMsg string

type stopMsg struct{}

type model struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case textMsg:
		m.text = string(msg)
		return m, nil
	case stopMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	return m.spinner.View() + m.text
}

// Start launches a program if none is running.
func (p *Program) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.prog != nil {
		return
	}

	m := model{
		spinner: spinner.New(spinner.WithSpinner(p.spinner)),
		text:    p.text,
	}
	prog := tea.NewProgram(m,
		tea.WithOutput(p.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := prog.Run(); err != nil {
			slog.Debug("status line program exited", "error", err)
		}
	}()
	p.prog = prog
	p.done = done
}

// Stop quits the running program and waits for its final render.
func (p *Program) Stop() {
	p.mu.Lock()
	prog, done := p.prog, p.done
	p.prog, p.done = nil, nil
	p.mu.Unlock()

	if prog == nil {
		return
	}
	prog.Send(stopMsg{})
	<-done
}

// SetText updates the text shown after the spinner frame.
func (p *Program) SetText(text string) {
	p.mu.Lock()
	p.text = text
	prog := p.prog
	p.mu.Unlock()

	if prog != nil {
		prog.Send(textMsg(text))
	}
}
