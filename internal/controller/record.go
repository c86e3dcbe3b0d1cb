package controller

import (
	"os"

	"github.com/gridops/gridctl/internal/pidfile"
)

type recordMeta = pidfile.Meta

// readRecord loads the PID record if one exists. A missing file is not
// an error; a corrupt one is.
func readRecord(path string) (int, recordMeta, bool, error) {
	pid, meta, err := pidfile.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, recordMeta{}, false, nil
		}
		return 0, recordMeta{}, false, err
	}
	return pid, meta, true, nil
}

func pidRecordExists(path string) bool { return pidfile.Exists(path) }
