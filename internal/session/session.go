// Package session wraps the terminal multiplexer used by session-mode
// launches. At most one session is expected per instance identity.
package session

import (
	"fmt"
	"os/exec"
	"strings"
)

const DefaultTool = "tmux"

// Multiplexer drives a terminal multiplexer binary (tmux by default).
type Multiplexer struct {
	Tool string
}

func New(tool string) Multiplexer {
	if strings.TrimSpace(tool) == "" {
		tool = DefaultTool
	}
	return Multiplexer{Tool: tool}
}

// Available reports whether the multiplexer binary is on PATH.
func (m Multiplexer) Available() bool {
	_, err := exec.LookPath(m.Tool)
	return err == nil
}

// Exists reports whether a session with the given name is running.
func (m Multiplexer) Exists(name string) bool {
	// #nosec G204 -- session names are derived from config base names
	cmd := exec.Command(m.Tool, "has-session", "-t", name)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// Start creates a detached session running shellCommand under sh -c.
func (m Multiplexer) Start(name, shellCommand string) error {
	// #nosec G204
	cmd := exec.Command(m.Tool, "new-session", "-d", "-s", name, "sh", "-c", shellCommand)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s new-session %s: %w: %s", m.Tool, name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Kill tears down the named session. A session that does not exist is
// not an error.
func (m Multiplexer) Kill(name string) error {
	if !m.Exists(name) {
		return nil
	}
	// #nosec G204
	cmd := exec.Command(m.Tool, "kill-session", "-t", name)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s kill-session %s: %w: %s", m.Tool, name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
