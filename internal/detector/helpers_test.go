package detector

import (
	"os/exec"
	"testing"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// spawnShortLived starts a process that exits almost immediately and
// returns its PID plus a channel closed once it has been reaped.
func spawnShortLived(t *testing.T) (int, chan struct{}) {
	t.Helper()
	cmd := exec.Command("sh", "-c", "exit 0")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pid := cmd.Process.Pid
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	return pid, done
}

// killPID force-kills a process we did not spawn directly (e.g. a
// grandchild behind a wrapper shell).
func killPID(t *testing.T, pid int) {
	t.Helper()
	if p, err := gopsproc.NewProcess(int32(pid)); err == nil {
		_ = p.Kill()
	}
}

// spawnArgs starts name with args, kills it at test cleanup, and
// returns its PID.
func spawnArgs(t *testing.T, name string, args ...string) int {
	t.Helper()
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		t.Fatalf("start %s: %v", name, err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})
	return cmd.Process.Pid
}
