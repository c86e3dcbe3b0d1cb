package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/gridops/gridctl/internal/config"
	"github.com/gridops/gridctl/internal/detector"
	"github.com/gridops/gridctl/internal/history"
	"github.com/gridops/gridctl/internal/instance"
	"github.com/gridops/gridctl/internal/pidfile"
)

// StopOptions tune a single stop invocation.
type StopOptions struct {
	Force     bool
	Wait      time.Duration // zero means the configured default
	OnTimeout string        // empty means the configured policy
}

// Stop terminates the instance owning configPath. Stopping an identity
// that has nothing running is a success, not an error.
func (c *Controller) Stop(ctx context.Context, configPath string, opts StopOptions) (Status, error) {
	inst := c.instance(configPath)
	st := Status{Identity: inst.Identity, LogFile: inst.LogFile, State: StateUnknown}

	wait := opts.Wait
	if wait <= 0 {
		wait = c.settings.StopWait
	}
	policy := opts.OnTimeout
	if policy == "" {
		policy = c.settings.OnTimeout
	}

	pid, meta, hadRecord, err := readRecord(inst.PIDFile)
	if err != nil {
		return st, err
	}

	if !hadRecord {
		// Fall back to the process table; the record may have been lost.
		spid, found, serr := c.findPID(c.settings.Entrypoint, inst.ConfigPath)
		if serr != nil {
			c.logger.Warn("process table scan failed", "identity", inst.Identity, "error", serr)
		}
		if !found {
			// Nothing to stop. Clean up any orphaned session and succeed.
			_ = c.mux.Kill(inst.SessionName)
			fmt.Fprintf(c.out, "no running process for %s\n", inst.Identity)
			st.State = StateStopped
			return st, nil
		}
		pid = spid
	} else {
		alive, derr := detector.PIDFileDetector{PIDFile: inst.PIDFile}.Alive()
		if derr != nil {
			return st, derr
		}
		if !alive {
			// Stale record: clear it and treat the stop as done.
			c.logger.Debug("removing stale pid record", "identity", inst.Identity, "pid", pid)
			_ = pidfile.Remove(inst.PIDFile)
			_ = c.mux.Kill(inst.SessionName)
			st.State = StateStopped
			return st, nil
		}
	}

	st.PID = pid
	st.Mode = meta.Mode
	st.State = StateStopping

	if opts.Force {
		// Non-ignorable signal, fire and forget; delivery failures are
		// irrelevant because the process either dies or was already gone.
		_ = killProcess(pid)
		c.finishStop(inst, pid, false)
		c.emit(history.EventStop, inst, pid, Mode(meta.Mode), nil)
		fmt.Fprintf(c.out, "sent kill signal to %s (pid %d)\n", inst.Identity, pid)
		st.State = StateStopped
		return st, nil
	}

	_ = terminateProcess(pid)
	c.logger.Info("requested graceful stop", "identity", inst.Identity, "pid", pid, "wait", wait)

	if c.waitForExit(ctx, pid, wait, inst.Identity) {
		return c.verifyStopped(inst, pid, meta, st)
	}

	// Bounded wait exhausted; apply the escalation policy.
	switch policy {
	case config.OnTimeoutForce:
		// fallthrough to kill below
	case config.OnTimeoutPrompt:
		if !c.confirm(fmt.Sprintf("%s (pid %d) is still running after %s. Kill it?", inst.Identity, pid, wait)) {
			terr := &StopTimeoutError{Identity: inst.Identity, PID: pid}
			c.emit(history.EventStopFailed, inst, pid, Mode(meta.Mode), terr)
			st.State = StateRunning
			return st, terr
		}
	default: // config.OnTimeoutFail
		terr := &StopTimeoutError{Identity: inst.Identity, PID: pid}
		c.emit(history.EventStopFailed, inst, pid, Mode(meta.Mode), terr)
		st.State = StateRunning
		return st, terr
	}

	_ = killProcess(pid)
	c.waitForExit(ctx, pid, 5*time.Second, inst.Identity)
	return c.verifyStopped(inst, pid, meta, st)
}

// waitForExit polls liveness once per poll interval up to bound,
// printing progress periodically. Returns true once the process is gone.
func (c *Controller) waitForExit(ctx context.Context, pid int, bound time.Duration, identity string) bool {
	deadline := time.Now().Add(bound)
	lastProgress := time.Now()
	for {
		if alive, _ := (detector.PIDDetector{PID: pid}).Alive(); !alive {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		if time.Since(lastProgress) >= c.progressInterval {
			remaining := time.Until(deadline).Round(time.Second)
			fmt.Fprintf(c.out, "waiting for %s to exit (up to %s left)...\n", identity, remaining)
			lastProgress = time.Now()
		}
		if err := sleepCtx(ctx, c.pollInterval); err != nil {
			return false
		}
	}
}

// verifyStopped re-checks liveness after a stop attempt; the liveness
// probe, not signal delivery, is the authority on success.
func (c *Controller) verifyStopped(inst instance.Instance, pid int, meta recordMeta, st Status) (Status, error) {
	if alive, _ := (detector.PIDDetector{PID: pid}).Alive(); alive {
		verr := &StopVerifyError{Identity: inst.Identity, PID: pid}
		c.emit(history.EventStopFailed, inst, pid, Mode(meta.Mode), verr)
		st.State = StateRunning
		return st, verr
	}
	c.finishStop(inst, pid, true)
	c.emit(history.EventStop, inst, pid, Mode(meta.Mode), nil)
	st.State = StateStopped
	return st, nil
}

// finishStop clears the PID record, tears down any lingering session,
// and surfaces the log tail.
func (c *Controller) finishStop(inst instance.Instance, pid int, showTail bool) {
	_ = pidfile.Remove(inst.PIDFile)
	_ = c.mux.Kill(inst.SessionName)
	c.logger.Info("instance stopped", "identity", inst.Identity, "pid", pid)
	if !showTail {
		return
	}
	if tail, err := tailLines(inst.LogFile, tailCount); err == nil && len(tail) > 0 {
		fmt.Fprintf(c.out, "--- last log lines (%s) ---\n", inst.LogFile)
		for _, line := range tail {
			fmt.Fprintln(c.out, line)
		}
	}
}
