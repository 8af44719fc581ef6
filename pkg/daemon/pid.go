package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// IsRunning reports whether the PID file names a live process. A stale
// file from a crashed daemon does not count.
func IsRunning(pidFile string) bool {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}
	// Signal 0 probes for existence without touching the process.
	return syscall.Kill(pid, 0) == nil
}

// WritePID records the current process in the PID file.
func WritePID(pidFile string) error {
	return os.WriteFile(pidFile, fmt.Appendf(nil, "%d\n", os.Getpid()), 0644)
}

// RemovePID deletes the PID file, ignoring its absence.
func RemovePID(pidFile string) {
	os.Remove(pidFile)
}
