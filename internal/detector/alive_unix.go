//go:build !windows

package detector

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"syscall"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// pidAlive returns true if a process with given pid exists (or EPERM).
// A zombie counts as dead: kill(pid, 0) still succeeds on one, but the
// process has exited and only awaits reaping by its parent.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	if err := syscall.Kill(pid, 0); err != nil {
		return errors.Is(err, syscall.EPERM)
	}
	return !isZombie(pid)
}

func isZombie(pid int) bool {
	// Linux fast path: the state letter follows the ") " that closes
	// the comm field in /proc/[pid]/stat.
	if b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat"); err == nil {
		if i := strings.LastIndex(string(b), ") "); i >= 0 {
			return strings.HasPrefix(strings.TrimSpace(string(b)[i+2:]), "Z")
		}
		return false
	}
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	statuses, err := p.Status()
	if err != nil {
		return false
	}
	for _, s := range statuses {
		if s == gopsproc.Zombie {
			return true
		}
	}
	return false
}
