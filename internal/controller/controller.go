// Package controller implements the daemon lifecycle: starting a
// grid-trading instance detached or inside a multiplexer session,
// persisting its PID record, and locating and terminating it later.
//
// Each invocation is a fresh, short-lived process; coordination with
// the managed daemon happens only through the PID file, OS signals,
// and process-table snapshots. A concurrent start/stop pair on the
// same identity is a known, undocumented race.
package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gridops/gridctl/internal/config"
	"github.com/gridops/gridctl/internal/detector"
	"github.com/gridops/gridctl/internal/history"
	"github.com/gridops/gridctl/internal/instance"
	"github.com/gridops/gridctl/internal/session"
)

// Mode selects how the daemon is launched.
type Mode string

const (
	ModeBackground Mode = "background"
	ModeSession    Mode = "session"
)

// State is the controller's view of an instance.
type State string

const (
	StateUnknown  State = "unknown"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
)

// Status is the externally visible snapshot of an instance.
type Status struct {
	Identity   string `json:"identity"`
	Running    bool   `json:"running"`
	PID        int    `json:"pid,omitempty"`
	Mode       string `json:"mode,omitempty"`
	DetectedBy string `json:"detected_by,omitempty"`
	LogFile    string `json:"log_file"`
	State      State  `json:"state"`
}

// Controller drives the lifecycle operations. Zero concurrency inside;
// one operation per invocation.
type Controller struct {
	settings config.Settings
	mux      session.Multiplexer
	logger   *slog.Logger
	sink     history.Sink

	out io.Writer
	in  io.Reader

	// Overridable for tests; defaults to a gopsutil process-table scan.
	findPID func(entrypoint, configPath string) (int, bool, error)

	pollInterval     time.Duration
	progressInterval time.Duration
}

func New(settings config.Settings, lg *slog.Logger) *Controller {
	if lg == nil {
		lg = slog.Default()
	}
	return &Controller{
		settings: settings,
		mux:      session.New(settings.Multiplexer),
		logger:   lg,
		out:      os.Stdout,
		in:       os.Stdin,
		findPID: func(entrypoint, configPath string) (int, bool, error) {
			return detector.ProcScanDetector{Entrypoint: entrypoint, ConfigPath: configPath}.FindPID()
		},
		pollInterval:     time.Second,
		progressInterval: 5 * time.Second,
	}
}

// SetSink attaches a lifecycle history sink. Sink errors are logged and
// otherwise ignored.
func (c *Controller) SetSink(s history.Sink) { c.sink = s }

// SetOutput redirects user-facing progress output (default os.Stdout).
func (c *Controller) SetOutput(w io.Writer) { c.out = w }

// SetInput redirects the escalation prompt's input (default os.Stdin).
func (c *Controller) SetInput(r io.Reader) { c.in = r }

func (c *Controller) instance(configPath string) instance.Instance {
	return instance.New(configPath, instance.Paths{
		PIDDir:        c.settings.PIDDir,
		LogDir:        c.settings.LogDir,
		SessionPrefix: c.settings.SessionPrefix,
	})
}

// Status resolves the current state of the instance owning configPath,
// first via the PID record, then via a process-table scan.
func (c *Controller) Status(configPath string) (Status, error) {
	inst := c.instance(configPath)
	st := Status{Identity: inst.Identity, LogFile: inst.LogFile, State: StateStopped}

	pid, meta, alive, err := c.resolve(inst)
	if err != nil {
		return st, err
	}
	if alive {
		st.Running = true
		st.PID = pid
		st.Mode = meta.Mode
		st.State = StateRunning
		if pidExists := pidRecordExists(inst.PIDFile); pidExists {
			st.DetectedBy = "pidfile:" + inst.PIDFile
		} else {
			st.DetectedBy = "procscan"
		}
	}
	return st, nil
}

// resolve locates a live owner of the instance. It prefers the PID
// record and falls back to the process-table scan; stale records are
// reported as not alive (pid still returned for cleanup).
func (c *Controller) resolve(inst instance.Instance) (pid int, meta recordMeta, alive bool, err error) {
	pid, meta, ok, err := readRecord(inst.PIDFile)
	if err != nil {
		return 0, meta, false, err
	}
	if ok {
		d := detector.PIDFileDetector{PIDFile: inst.PIDFile}
		live, derr := d.Alive()
		if derr != nil {
			return pid, meta, false, derr
		}
		return pid, meta, live, nil
	}
	spid, found, serr := c.findPID(c.settings.Entrypoint, inst.ConfigPath)
	if serr != nil {
		c.logger.Warn("process table scan failed", "identity", inst.Identity, "error", serr)
		return 0, meta, false, nil
	}
	if found {
		return spid, recordMeta{}, true, nil
	}
	return 0, meta, false, nil
}

func (c *Controller) emit(t history.EventType, inst instance.Instance, pid int, mode Mode, opErr error) {
	if c.sink == nil {
		return
	}
	rec := history.Record{Identity: inst.Identity, PID: pid, Mode: string(mode)}
	if opErr != nil {
		rec.Error = opErr.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.sink.Send(ctx, history.Event{Type: t, OccurredAt: time.Now().UTC(), Record: rec}); err != nil {
		c.logger.Warn("history sink write failed", "event", string(t), "error", err)
	}
}

// confirm asks the user a yes/no question on the configured streams.
func (c *Controller) confirm(question string) bool {
	_, _ = fmt.Fprintf(c.out, "%s [y/N]: ", question)
	r := bufio.NewReader(c.in)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
