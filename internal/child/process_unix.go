//go:build unix

package child

import (
	"errors"
	"os/exec"
	"syscall"
	"time"
)

// groupPollInterval is how often a draining group is checked for survivors.
const groupPollInterval = 20 * time.Millisecond

// setProcessGroup configures the command to run in its own process group.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// interruptProcessGroup sends SIGINT to the producer's whole process group.
func interruptProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Signal(syscall.SIGINT)
	}
	return syscall.Kill(-pgid, syscall.SIGINT)
}

// exitCode extracts the exit code from an exec.ExitError. Death by signal
// maps to 128+signal, as shells report it.
func exitCode(exitErr *exec.ExitError) (int, bool) {
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return 0, false
	}
	if ws.Signaled() {
		return 128 + int(ws.Signal()), true
	}
	return ws.ExitStatus(), true
}

// killGroupAfter waits until the process group is empty or the deadline has
// passed, then sends SIGKILL to whatever is left.
func killGroupAfter(pgid int, deadline time.Time) {
	if pgid <= 0 {
		return
	}
	for time.Now().Before(deadline) {
		if !groupAlive(pgid) {
			return
		}
		time.Sleep(groupPollInterval)
	}
	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}

// groupAlive reports whether any process remains in the group.
func groupAlive(pgid int) bool {
	err := syscall.Kill(-pgid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
