//go:build !windows

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFixture lays out a controller config, a fake daemon script and a
// trading config under a temp dir, returning the --config and trading
// config paths.
func writeFixture(t *testing.T, daemonScript string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	script := filepath.Join(dir, "daemon.sh")
	if err := os.WriteFile(script, []byte(daemonScript), 0o700); err != nil {
		t.Fatal(err)
	}
	trading := filepath.Join(dir, "grid_sol.yaml")
	if err := os.WriteFile(trading, []byte("pair: SOL/USDT\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctl := fmt.Sprintf(`entrypoint = "sh %s"
scanner_entrypoint = "sh -c"
pid_dir = "run"
log_dir = "logs"
settle = "300ms"
stop_wait = "5s"
on_timeout = "fail"
`, script)
	ctlPath := filepath.Join(dir, "gridctl.toml")
	if err := os.WriteFile(ctlPath, []byte(ctl), 0o600); err != nil {
		t.Fatal(err)
	}
	return ctlPath, trading
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := buildRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHelpExitsZero(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help should succeed: %v, out=%s", err, out)
	}
	if !strings.Contains(out, "gridctl") {
		t.Fatalf("unexpected help output: %s", out)
	}
}

func TestStartStatusLogsStopRoundTrip(t *testing.T) {
	ctlCfg, trading := writeFixture(t, "#!/bin/sh\necho order grid ready\nexec sleep 30\n")

	out, err := runCLI(t, "--config", ctlCfg, "start", trading)
	if err != nil {
		t.Fatalf("start failed: %v out=%s", err, out)
	}
	if !strings.Contains(out, "started grid_sol") {
		t.Fatalf("start output: %s", out)
	}

	out, err = runCLI(t, "--config", ctlCfg, "status", trading)
	if err != nil {
		t.Fatalf("status failed: %v out=%s", err, out)
	}
	if !strings.Contains(out, "running") {
		t.Fatalf("status output: %s", out)
	}

	out, err = runCLI(t, "--config", ctlCfg, "logs", trading, "-n", "5")
	if err != nil {
		t.Fatalf("logs failed: %v out=%s", err, out)
	}
	if !strings.Contains(out, "order grid ready") {
		t.Fatalf("logs output: %s", out)
	}

	out, err = runCLI(t, "--config", ctlCfg, "stop", trading)
	if err != nil {
		t.Fatalf("stop failed: %v out=%s", err, out)
	}
	if !strings.Contains(out, "stopped grid_sol") {
		t.Fatalf("stop output: %s", out)
	}
}

func TestStopWithoutRunningInstanceSucceeds(t *testing.T) {
	ctlCfg, trading := writeFixture(t, "#!/bin/sh\nexit 0\n")
	out, err := runCLI(t, "--config", ctlCfg, "stop", trading)
	if err != nil {
		t.Fatalf("stop of idle identity should succeed: %v out=%s", err, out)
	}
}

func TestStartMissingTradingConfigFails(t *testing.T) {
	ctlCfg, trading := writeFixture(t, "#!/bin/sh\nexit 0\n")
	if _, err := runCLI(t, "--config", ctlCfg, "start", trading+".missing"); err == nil {
		t.Fatal("start with missing trading config must fail")
	}
}

func TestStartRequiresExactlyOneArg(t *testing.T) {
	if _, err := runCLI(t, "start"); err == nil {
		t.Fatal("start without args must fail")
	}
}

func TestScanRunsForeground(t *testing.T) {
	ctlCfg, _ := writeFixture(t, "#!/bin/sh\nexit 0\n")
	out, err := runCLI(t, "--config", ctlCfg, "scan", "echo volatility report")
	if err != nil {
		t.Fatalf("scan failed: %v out=%s", err, out)
	}
	if !strings.Contains(out, "volatility report") {
		t.Fatalf("scan output: %s", out)
	}
}
