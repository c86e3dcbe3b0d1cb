package controller

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyRunning is returned by Start when a live process already
	// owns the instance identity.
	ErrAlreadyRunning = errors.New("instance already running")
	// ErrMultiplexerMissing is returned when session mode is requested
	// but the multiplexer binary is not installed.
	ErrMultiplexerMissing = errors.New("terminal multiplexer not found")
)

// LaunchVerifyError reports a child that died inside the settle window.
// It carries the tail of the instance log for diagnosis.
type LaunchVerifyError struct {
	Identity string
	LogFile  string
	Tail     []string
}

func (e *LaunchVerifyError) Error() string {
	msg := fmt.Sprintf("instance %s exited during the settle window (log: %s)", e.Identity, e.LogFile)
	if len(e.Tail) > 0 {
		msg += "\n--- last log lines ---\n" + strings.Join(e.Tail, "\n")
	}
	return msg
}

// StopTimeoutError reports a graceful stop that exceeded its bound
// without escalation (policy fail, or the user declined the prompt).
type StopTimeoutError struct {
	Identity string
	PID      int
}

func (e *StopTimeoutError) Error() string {
	return fmt.Sprintf("instance %s (pid %d) did not stop in time; re-run with --force to kill it", e.Identity, e.PID)
}

// StopVerifyError reports a process that survived a termination signal.
type StopVerifyError struct {
	Identity string
	PID      int
}

func (e *StopVerifyError) Error() string {
	return fmt.Sprintf("instance %s (pid %d) is still alive after stop; try --force", e.Identity, e.PID)
}
