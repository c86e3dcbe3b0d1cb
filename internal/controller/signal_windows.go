//go:build windows

package controller

import "syscall"

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess      = kernel32.NewProc("OpenProcess")
	procTerminateProcess = kernel32.NewProc("TerminateProcess")
	procCloseHandle      = kernel32.NewProc("CloseHandle")
)

const processTerminate = 0x0001

// terminateProcess has no SIGTERM analogue on Windows; both paths end
// the process via TerminateProcess.
func terminateProcess(pid int) error {
	return killProcess(pid)
}

// killProcess forcibly ends a Windows process by PID.
func killProcess(pid int) error {
	if pid <= 0 {
		return nil
	}
	ret, _, _ := procOpenProcess.Call(uintptr(processTerminate), 0, uintptr(uint32(pid)))
	if ret == 0 {
		// The process is most likely already gone.
		return nil
	}
	handle := syscall.Handle(ret)
	defer procCloseHandle.Call(uintptr(handle)) //nolint:errcheck
	if r, _, terr := procTerminateProcess.Call(uintptr(handle), 1); r == 0 {
		return terr
	}
	return nil
}
