package instance

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Instance identifies one managed daemon run, derived entirely from the
// path of its configuration file. Two config files map to the same
// instance iff their base names (extension stripped) collide.
type Instance struct {
	Identity    string `json:"identity"`
	ConfigPath  string `json:"config_path"`
	PIDFile     string `json:"pid_file"`
	LogFile     string `json:"log_file"`
	SessionName string `json:"session_name"`
}

// Paths groups the directories and naming scheme used to derive
// per-instance resources.
type Paths struct {
	PIDDir        string
	LogDir        string
	SessionPrefix string
}

// Identity returns the short instance name for a config path: the base
// name with its extension stripped.
func Identity(configPath string) string {
	base := filepath.Base(configPath)
	ext := filepath.Ext(base)
	id := strings.TrimSuffix(base, ext)
	if id == "" {
		// Dotfiles like ".yaml" strip to nothing; keep the raw base.
		id = base
	}
	return id
}

// New derives the full instance record for a config path.
func New(configPath string, p Paths) Instance {
	id := Identity(configPath)
	return Instance{
		Identity:    id,
		ConfigPath:  configPath,
		PIDFile:     filepath.Join(p.PIDDir, id+".pid"),
		LogFile:     filepath.Join(p.LogDir, id+".log"),
		SessionName: p.SessionPrefix + id,
	}
}

func (i Instance) String() string {
	return fmt.Sprintf("%s (pidfile=%s)", i.Identity, i.PIDFile)
}
