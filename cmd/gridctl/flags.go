package main

import "time"

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string // controller TOML config (optional)
}

// StartFlags holds flags for the start command.
type StartFlags struct {
	Session bool          // launch inside a multiplexer session
	Settle  time.Duration // liveness verification window
}

// StopFlags holds flags for the stop command.
type StopFlags struct {
	Force     bool          // SIGKILL immediately, skip the graceful path
	Wait      time.Duration // graceful stop bound
	OnTimeout string        // prompt | fail | force
}

// StatusFlags holds flags for the status command.
type StatusFlags struct {
	JSON bool
}

// LogsFlags holds flags for the logs command.
type LogsFlags struct {
	Lines int
}
