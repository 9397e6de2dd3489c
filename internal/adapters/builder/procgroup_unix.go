//go:build !windows

package builder

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the tool in its own process group and makes
// cancellation signal the whole group.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
