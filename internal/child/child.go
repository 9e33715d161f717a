// Package child runs a TAP producer as a subprocess so its stdout can be fed
// straight into the renderer. The producer gets its own process group, so
// interrupting tapmonkey also interrupts every process the producer spawned.
package child

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// DefaultGrace is how long an interrupted producer gets to exit before its
// process group is killed.
const DefaultGrace = 2 * time.Second

// Config describes the producer command.
type Config struct {
	Name   string
	Args   []string
	Stderr io.Writer     // producer stderr; defaults to os.Stderr
	Grace  time.Duration // defaults to DefaultGrace
}

// Process is a started producer.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
	grace  time.Duration
	pgid   int

	mu       sync.Mutex
	killedBy time.Time // SIGKILL deadline for the group, zero until interrupted
}

// Start launches the producer. Cancelling ctx (or calling Stop) interrupts
// its process group, escalating to SIGKILL after the grace period.
func Start(ctx context.Context, cfg Config) (*Process, error) {
	if cfg.Name == "" {
		return nil, errors.New("no producer command given")
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, cfg.Name, cfg.Args...)
	p := &Process{cmd: cmd, cancel: cancel, grace: cfg.Grace}
	cmd.Env = os.Environ()
	cmd.Stderr = cfg.Stderr
	setProcessGroup(cmd)
	cmd.Cancel = p.interrupt
	// os/exec kills only the leader after WaitDelay; Wait finishes the group.
	cmd.WaitDelay = cfg.Grace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("starting %s: %w", cfg.Name, err)
	}
	p.stdout = stdout
	p.pgid = cmd.Process.Pid
	return p, nil
}

// interrupt sends SIGINT to the group and arms the SIGKILL deadline.
func (p *Process) interrupt() error {
	p.mu.Lock()
	if p.killedBy.IsZero() {
		p.killedBy = time.Now().Add(p.grace)
	}
	p.mu.Unlock()
	return interruptProcessGroup(p.cmd)
}

// deadline returns the SIGKILL deadline, zero when never interrupted.
func (p *Process) deadline() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killedBy
}

// Stdout is the producer's TAP stream.
func (p *Process) Stdout() io.Reader {
	return p.stdout
}

// Stop interrupts the producer if it is still running.
func (p *Process) Stop() {
	p.cancel()
}

// Wait waits for the producer to exit and returns its exit code. A non-nil
// error means the producer could not be waited on, not that it failed.
func (p *Process) Wait() (int, error) {
	defer p.cancel()
	err := p.cmd.Wait()
	if d := p.deadline(); !d.IsZero() {
		// The leader is gone; anything it spawned gets the rest of the grace.
		killGroupAfter(p.pgid, d)
	}
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := exitCode(exitErr); ok {
			return code, nil
		}
		return 1, nil
	}
	if p.cmd.ProcessState != nil && (errors.Is(err, exec.ErrWaitDelay) || errors.Is(err, context.Canceled)) {
		return p.cmd.ProcessState.ExitCode(), nil
	}
	return 1, fmt.Errorf("waiting for %s: %w", p.cmd.Path, err)
}
