//go:build !windows

package controller

import "syscall"

// terminateProcess asks a Unix process to shut down cooperatively.
func terminateProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// killProcess forcibly ends a Unix process.
func killProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}
