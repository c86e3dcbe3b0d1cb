package pidfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Meta is the optional JSON metadata stored after the PID line. The
// recorded start time lets readers detect PID reuse after a reboot or a
// long gap between invocations.
type Meta struct {
	StartUnix  int64  `json:"start_unix,omitempty"`
	ConfigPath string `json:"config,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

// Write persists pid and meta to path. First line is the PID; the
// second line is the JSON-encoded Meta. Parent directories are created
// as needed.
func Write(path string, pid int, meta Meta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(pid))
	b.WriteByte('\n')
	if meta != (Meta{}) {
		enc, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		b.Write(enc)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// Read parses a PID file written by Write. It returns the PID and, if
// present, the metadata that follows. Legacy files containing only a
// PID yield a zero Meta.
func Read(path string) (int, Meta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, Meta{}, err
	}
	pidLine, rest, _ := strings.Cut(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(pidLine))
	if err != nil {
		return 0, Meta{}, err
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return pid, Meta{}, nil
	}
	var meta Meta
	if err := json.Unmarshal([]byte(rest), &meta); err != nil {
		// The PID is still usable even when the meta line is garbled.
		return pid, Meta{}, nil
	}
	return pid, meta, nil
}

// Remove deletes the PID record. Missing files are not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether a record is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
