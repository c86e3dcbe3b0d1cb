//go:build !windows

package controller

import (
	"os/exec"
	"syscall"
)

// configureDetachedAttrs starts the child in a new session (setsid) so it
// is detached from the controlling terminal and survives our exit.
func configureDetachedAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
