// Package scanner runs the one-shot market volatility scanner. Unlike
// the daemon it has no lifecycle: it runs in the foreground attached to
// the caller's terminal and its exit code is passed through.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner invokes the configured scanner entry point.
type Runner struct {
	Entrypoint string
	Stdout     io.Writer
	Stderr     io.Writer
	Stdin      io.Reader
}

// Run executes the scanner with extra args appended and returns its
// exit code. A non-zero exit is reported through the code, not the
// error; the error covers launch failures only.
func (r Runner) Run(ctx context.Context, args []string) (int, error) {
	parts := strings.Fields(strings.TrimSpace(r.Entrypoint))
	if len(parts) == 0 {
		return 1, errors.New("scanner entry point not configured")
	}
	// #nosec G204 -- the entry point comes from the operator's own config
	cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], args...)...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Stdin = r.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("run %s: %w", parts[0], err)
	}
	return 0, nil
}
