package controller

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gridops/gridctl/internal/detector"
	"github.com/gridops/gridctl/internal/history"
	"github.com/gridops/gridctl/internal/instance"
	"github.com/gridops/gridctl/internal/pidfile"
)

// StartOptions tune a single start invocation.
type StartOptions struct {
	Mode   Mode
	Settle time.Duration // zero means the configured default
}

// Start launches the daemon for configPath and verifies it survives the
// settle window. On success the PID record is persisted and the
// returned Status reports the running instance.
func (c *Controller) Start(ctx context.Context, configPath string, opts StartOptions) (Status, error) {
	inst := c.instance(configPath)
	st := Status{Identity: inst.Identity, LogFile: inst.LogFile, State: StateUnknown}

	if _, err := os.Stat(configPath); err != nil {
		return st, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if opts.Mode == "" {
		opts.Mode = ModeBackground
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = c.settings.Settle
	}

	// Precondition: nobody may own this identity. A stale record is
	// discarded silently.
	if pid, _, ok, err := readRecord(inst.PIDFile); err != nil {
		return st, err
	} else if ok {
		alive, derr := detector.PIDFileDetector{PIDFile: inst.PIDFile}.Alive()
		if derr != nil {
			return st, derr
		}
		if alive {
			return st, fmt.Errorf("%w: identity %s (pid %d); stop it first", ErrAlreadyRunning, inst.Identity, pid)
		}
		c.logger.Debug("discarding stale pid record", "identity", inst.Identity, "pid", pid)
		_ = pidfile.Remove(inst.PIDFile)
	}

	if err := os.MkdirAll(c.settings.PIDDir, 0o750); err != nil {
		return st, err
	}
	if err := os.MkdirAll(c.settings.LogDir, 0o750); err != nil {
		return st, err
	}

	st.State = StateStarting
	var pid int
	var err error
	switch opts.Mode {
	case ModeBackground:
		pid, err = c.startBackground(inst)
	case ModeSession:
		pid, err = c.startSession(ctx, inst)
	default:
		err = fmt.Errorf("unknown launch mode %q", opts.Mode)
	}
	if err != nil {
		c.emit(history.EventStartFailed, inst, pid, opts.Mode, err)
		return st, err
	}

	// Settle window: a child that dies here never gets a PID record.
	if werr := sleepCtx(ctx, settle); werr != nil {
		return st, werr
	}
	if alive, _ := (detector.PIDDetector{PID: pid}).Alive(); !alive {
		tail, _ := tailLines(inst.LogFile, tailCount)
		_ = c.mux.Kill(inst.SessionName)
		verr := &LaunchVerifyError{Identity: inst.Identity, LogFile: inst.LogFile, Tail: tail}
		c.emit(history.EventStartFailed, inst, pid, opts.Mode, verr)
		return st, verr
	}

	meta := pidfile.Meta{
		StartUnix:  detector.ProcStartUnix(pid),
		ConfigPath: inst.ConfigPath,
		Mode:       string(opts.Mode),
	}
	if err := pidfile.Write(inst.PIDFile, pid, meta); err != nil {
		return st, fmt.Errorf("persist pid record: %w", err)
	}

	c.logger.Info("instance started",
		"identity", inst.Identity, "pid", pid, "mode", string(opts.Mode), "log", inst.LogFile)
	c.emit(history.EventStart, inst, pid, opts.Mode, nil)

	st.Running = true
	st.PID = pid
	st.Mode = string(opts.Mode)
	st.State = StateRunning
	st.DetectedBy = "pidfile:" + inst.PIDFile
	return st, nil
}

// startBackground launches the entry point detached from the terminal,
// with combined output overwriting the instance log file.
func (c *Controller) startBackground(inst instance.Instance) (int, error) {
	logf, err := os.OpenFile(inst.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := buildEntrypointCmd(c.settings.Entrypoint, inst.ConfigPath)
	cmd.Stdin = nil
	cmd.Stdout = logf
	cmd.Stderr = logf
	configureDetachedAttrs(cmd)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launch %s: %w", c.settings.Entrypoint, err)
	}
	pid := cmd.Process.Pid
	// Reap the child if it exits while this process is still around;
	// an unreaped zombie would satisfy the liveness probe forever.
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// startSession launches the entry point inside a uniquely named
// multiplexer session and discovers the daemon PID by scanning the
// process table, since the direct child is the multiplexer itself.
func (c *Controller) startSession(ctx context.Context, inst instance.Instance) (int, error) {
	if !c.mux.Available() {
		return 0, fmt.Errorf("%w: install %s (e.g. apt install %s) or start without --session",
			ErrMultiplexerMissing, c.mux.Tool, c.mux.Tool)
	}
	// An orphaned session would collide with the deterministic name.
	_ = c.mux.Kill(inst.SessionName)

	shellCmd := fmt.Sprintf("%s %s 2>&1 | tee -a %s",
		c.settings.Entrypoint, shellQuote(inst.ConfigPath), shellQuote(inst.LogFile))
	if err := c.mux.Start(inst.SessionName, shellCmd); err != nil {
		return 0, err
	}

	// The daemon needs a moment to appear in the process table.
	deadline := time.Now().Add(5 * time.Second)
	for {
		pid, found, err := c.findPID(c.settings.Entrypoint, inst.ConfigPath)
		if err != nil {
			return 0, err
		}
		if found {
			return pid, nil
		}
		if time.Now().After(deadline) {
			tail, _ := tailLines(inst.LogFile, tailCount)
			_ = c.mux.Kill(inst.SessionName)
			return 0, &LaunchVerifyError{Identity: inst.Identity, LogFile: inst.LogFile, Tail: tail}
		}
		if err := sleepCtx(ctx, 200*time.Millisecond); err != nil {
			return 0, err
		}
	}
}

// buildEntrypointCmd splits the configured entry point into argv and
// appends the config path as the sole positional argument.
func buildEntrypointCmd(entrypoint, configPath string) *exec.Cmd {
	parts := strings.Fields(strings.TrimSpace(entrypoint))
	name := parts[0]
	args := append(parts[1:], configPath)
	// #nosec G204 -- the entry point comes from the operator's own config
	return exec.Command(name, args...)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
