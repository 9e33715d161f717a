//go:build !unix

package child

import (
	"os/exec"
	"time"
)

// setProcessGroup is a no-op on non-Unix platforms.
func setProcessGroup(cmd *exec.Cmd) {}

// interruptProcessGroup kills the process directly on non-Unix platforms.
func interruptProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func exitCode(exitErr *exec.ExitError) (int, bool) {
	return exitErr.ExitCode(), true
}

// killGroupAfter is a no-op on non-Unix platforms; the leader was killed
// directly by interruptProcessGroup.
func killGroupAfter(pgid int, deadline time.Time) {}
