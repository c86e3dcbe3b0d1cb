package detector

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gridops/gridctl/internal/pidfile"
)

func TestPIDDetectorSelf(t *testing.T) {
	d := PIDDetector{PID: os.Getpid()}
	alive, err := d.Alive()
	if err != nil || !alive {
		t.Fatalf("own pid should be alive: alive=%v err=%v", alive, err)
	}
}

func TestPIDDetectorInvalid(t *testing.T) {
	for _, pid := range []int{0, -1} {
		alive, err := (PIDDetector{PID: pid}).Alive()
		if err != nil || alive {
			t.Fatalf("pid %d: alive=%v err=%v", pid, alive, err)
		}
	}
}

func TestPIDFileDetectorMissingFile(t *testing.T) {
	d := PIDFileDetector{PIDFile: filepath.Join(t.TempDir(), "none.pid")}
	alive, err := d.Alive()
	if err != nil {
		t.Fatalf("missing pidfile should not error: %v", err)
	}
	if alive {
		t.Fatal("missing pidfile must report not alive")
	}
}

func TestPIDFileDetectorLivePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "self.pid")
	if err := pidfile.Write(path, os.Getpid(), pidfile.Meta{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	alive, err := (PIDFileDetector{PIDFile: path}).Alive()
	if err != nil || !alive {
		t.Fatalf("alive=%v err=%v", alive, err)
	}
}

func TestPIDFileDetectorRejectsReusedPID(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("start-time probe differs on windows")
	}
	cur := getProcStartUnix(os.Getpid())
	if cur == 0 {
		t.Skip("cannot resolve own start time on this platform")
	}
	path := filepath.Join(t.TempDir(), "reused.pid")
	// Record a start time that cannot match the current occupant of the PID.
	if err := pidfile.Write(path, os.Getpid(), pidfile.Meta{StartUnix: cur - 3600}); err != nil {
		t.Fatalf("write: %v", err)
	}
	alive, err := (PIDFileDetector{PIDFile: path}).Alive()
	if err != nil {
		t.Fatalf("Alive: %v", err)
	}
	if alive {
		t.Fatal("mismatched start time must be treated as PID reuse")
	}
}

func TestPIDDetectorIgnoresZombie(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("zombies are a Unix concept")
	}
	// Kill a direct child and delay reaping: kill(pid, 0) still
	// succeeds on the zombie, but the detector must report it dead.
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Kill(); err != nil {
		t.Fatalf("kill: %v", err)
	}
	defer func() { _ = cmd.Wait() }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		alive, err := (PIDDetector{PID: pid}).Alive()
		if err != nil {
			t.Fatalf("Alive: %v", err)
		}
		if !alive {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("pid %d is a zombie but still reported alive", pid)
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestPIDFileDetectorDeadPID(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires Unix process semantics")
	}
	pid, done := spawnShortLived(t)
	<-done
	// Give the kernel a moment to reap.
	time.Sleep(50 * time.Millisecond)
	path := filepath.Join(t.TempDir(), "dead.pid")
	if err := pidfile.Write(path, pid, pidfile.Meta{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	alive, err := (PIDFileDetector{PIDFile: path}).Alive()
	if err != nil {
		t.Fatalf("Alive: %v", err)
	}
	if alive {
		t.Fatalf("pid %d exited, detector must report not alive", pid)
	}
}

func TestProcScanMatches(t *testing.T) {
	d := ProcScanDetector{
		Entrypoint: "python3 run_grid_trading_daemon.py",
		ConfigPath: "config/grid/btc_long.yaml",
	}
	cases := []struct {
		name string
		args []string
		want bool
	}{
		{"plain", []string{"python3", "run_grid_trading_daemon.py", "config/grid/btc_long.yaml"}, true},
		{"absolute paths", []string{"/usr/bin/python3", "./run_grid_trading_daemon.py", "/abs/btc_long.yaml"}, true},
		{"other config", []string{"python3", "run_grid_trading_daemon.py", "other.yaml"}, false},
		{"other entrypoint", []string{"python3", "run_volatility_scanner.py", "btc_long.yaml"}, false},
		{"empty", nil, false},
		// The session pipeline wrapper carries the whole invocation as
		// one sh -c string; it must never be taken for the daemon.
		{"pipeline wrapper", []string{"sh", "-c",
			"python3 run_grid_trading_daemon.py 'config/grid/btc_long.yaml' 2>&1 | tee -a '/var/log/grid/btc_long.log'"}, false},
		{"tee sibling", []string{"tee", "-a", "/var/log/grid/btc_long.log"}, false},
	}
	for _, c := range cases {
		if got := d.matches(c.args); got != c.want {
			t.Fatalf("%s: matches(%v) = %v, want %v", c.name, c.args, got, c.want)
		}
	}
}

func TestProcScanSkipsSessionWrapper(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process-table integration test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake_daemon.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nwhile :; do sleep 0.2; done\n"), 0o700); err != nil {
		t.Fatalf("write script: %v", err)
	}
	cfg := "wrapped_target_cfg.yaml"
	logFile := filepath.Join(dir, "wrapped_target.log")

	// Same shape as a session-mode launch: a wrapper shell running the
	// daemon piped through tee. The wrapper starts first, so a substring
	// match would bind to it.
	wrapperPID := spawnArgs(t, "sh", "-c",
		"sh "+script+" '"+cfg+"' 2>&1 | tee -a '"+logFile+"'")

	d := ProcScanDetector{Entrypoint: "sh " + script, ConfigPath: cfg}
	deadline := time.Now().Add(2 * time.Second)
	for {
		pid, ok, err := d.FindPID()
		if err != nil {
			t.Fatalf("FindPID: %v", err)
		}
		if ok {
			killPID(t, pid)
			if pid == wrapperPID {
				t.Fatalf("scan bound to the pipeline wrapper (pid %d)", pid)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("daemon never found behind the wrapper")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestProcScanFindPID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process-table integration test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake_daemon.sh")
	// The loop keeps the shell from exec-replacing itself with sleep,
	// so its argv stays scannable.
	if err := os.WriteFile(script, []byte("#!/bin/sh\nwhile :; do sleep 0.2; done\n"), 0o700); err != nil {
		t.Fatalf("write script: %v", err)
	}
	cfg := "scan_target_cfg.yaml"
	pid := spawnArgs(t, "sh", script, cfg)

	d := ProcScanDetector{Entrypoint: "sh " + script, ConfigPath: cfg}
	found := false
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, ok, err := d.FindPID()
		if err != nil {
			t.Fatalf("FindPID: %v", err)
		}
		if ok && got == pid {
			found = true
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !found {
		t.Fatalf("expected to find pid %d via process scan", pid)
	}
}
