package detector

import (
	"os"
	"path/filepath"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// ProcScanDetector locates a process by scanning the process table for
// an argv that carries both the entry-point invocation and the
// instance's config file. This is the fallback when no usable PID
// record exists, and the only way to find the real daemon PID under
// session mode (the direct child there is the multiplexer).
type ProcScanDetector struct {
	Entrypoint string // e.g. "python3 run_grid_trading_daemon.py"
	ConfigPath string // the positional argument passed to the entry point
}

func (d ProcScanDetector) Alive() (bool, error) {
	_, ok, err := d.FindPID()
	return ok, err
}

func (d ProcScanDetector) Describe() string {
	return "procscan:" + d.Entrypoint + " " + filepath.Base(d.ConfigPath)
}

// FindPID returns the PID of the first matching process. The snapshot
// is inherently racy with process exit; callers must re-verify liveness
// before trusting the result for long.
func (d ProcScanDetector) FindPID() (int, bool, error) {
	procs, err := gopsproc.Processes()
	if err != nil {
		return 0, false, err
	}
	self := os.Getpid()
	for _, p := range procs {
		if int(p.Pid) == self {
			continue
		}
		args, err := p.CmdlineSlice()
		if err != nil || len(args) == 0 {
			continue
		}
		if d.matches(args) {
			return int(p.Pid), true, nil
		}
	}
	return 0, false, nil
}

// matches requires every entry-point token and the config file name to
// appear as whole argv elements. Comparing base names tolerates
// relative-vs-absolute invocation differences, while whole-element
// matching keeps the session pipeline wrapper out: its entry point and
// config live inside one `sh -c` string argument, never as argv tokens
// of their own.
func (d ProcScanDetector) matches(args []string) bool {
	for _, tok := range strings.Fields(d.Entrypoint) {
		if !argsContain(args, tok) {
			return false
		}
	}
	return argsContain(args, filepath.Base(d.ConfigPath))
}

func argsContain(args []string, tok string) bool {
	base := filepath.Base(tok)
	for _, a := range args {
		if a == tok || filepath.Base(a) == base {
			return true
		}
	}
	return false
}
