package detector

// ProcStartUnix reports the start time of pid as Unix seconds, or 0
// when it cannot be determined.
func ProcStartUnix(pid int) int64 { return getProcStartUnix(pid) }
