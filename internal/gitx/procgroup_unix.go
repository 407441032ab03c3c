// SPDX-License-Identifier: MIT
//go:build unix

package gitx

import (
	"os/exec"
	"syscall"
)

// detachProcessGroup starts cmd in its own process group so a terminal
// interrupt aimed at fleetpull does not reach a running checkout or rebase.
// The child still dies when its context is done.
func detachProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
