//go:build unix

package git

import (
	"os/exec"
	"syscall"
)

// setProcAttr starts git in its own process group and makes cancellation
// kill the whole group, so ssh and remote helpers die with git.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}

	cmd.Cancel = func() error {
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}

		return nil
	}
}
